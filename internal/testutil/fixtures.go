package testutil

import (
	"errors"
	"fmt"
	"strings"
)

// LibraryURI is the library the fixture types are declared in. It matches
// their Go package path, so hint.TypeNameOf agrees with the declarations.
const LibraryURI = "github.com/roach88/mirror/internal/testutil"

// Qualified type names of the fixtures.
const (
	CounterType = LibraryURI + ".Counter"
	GreeterType = LibraryURI + ".Greeter"
)

// ErrCounterFailed is returned by Counter.Fail.
var ErrCounterFailed = errors.New("counter failed")

// Counter is a mutable fixture exercising constructors, methods with named
// parameters, fields and errors returned by invoked code.
type Counter struct {
	Count int
	Step  int
}

// NewCounter creates a counter at start with step 1.
func NewCounter(start int) *Counter {
	return &Counter{Count: start, Step: 1}
}

// Increment adds Step and returns the new count.
func (c *Counter) Increment() int {
	c.Count += c.Step
	return c.Count
}

// Add adds n*times and returns the new count.
func (c *Counter) Add(n, times int) int {
	c.Count += n * times
	return c.Count
}

// Reset sets the count to zero.
func (c *Counter) Reset() {
	c.Count = 0
}

// Fail always fails.
func (c *Counter) Fail() error {
	return fmt.Errorf("at %d: %w", c.Count, ErrCounterFailed)
}

// Greeter is an immutable fixture. Its hint omits Shout, which only the
// live backend reaches.
type Greeter struct {
	Greeting string
}

// NewGreeter creates a greeter using greeting.
func NewGreeter(greeting string) *Greeter {
	return &Greeter{Greeting: greeting}
}

// NewFormalGreeter creates a greeter saying "Good day".
func NewFormalGreeter() *Greeter {
	return &Greeter{Greeting: "Good day"}
}

// Greet returns "<greeting>, <name>!".
func (g *Greeter) Greet(name string) string {
	return g.Greeting + ", " + name + "!"
}

// Shout returns Greet in upper case.
func (g *Greeter) Shout(name string) string {
	return strings.ToUpper(g.Greet(name))
}
