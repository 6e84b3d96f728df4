package testutil

import (
	"fmt"

	"github.com/roach88/mirror/internal/executor"
)

// Catalog returns a live-backend catalog holding the fixture types and
// their constructors.
func Catalog() *executor.Catalog {
	c := executor.NewCatalog()
	counter := c.AddType(&Counter{})
	greeter := c.AddType(&Greeter{})
	for _, reg := range []struct {
		typeName, ctor string
		fn             any
	}{
		{counter, "", NewCounter},
		{greeter, "", NewGreeter},
		{greeter, "formal", NewFormalGreeter},
	} {
		if err := c.AddConstructor(reg.typeName, reg.ctor, reg.fn); err != nil {
			panic(fmt.Sprintf("testutil: %v", err))
		}
	}
	return c
}
