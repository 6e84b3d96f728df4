package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
)

// Chain consults sources in order; the first that knows a library wins.
// Sources that fail for other reasons are skipped, and the first such
// failure is reported if no source knows the library.
type Chain []resolve.Source

var _ resolve.Source = Chain(nil)

// Library implements resolve.Source.
func (c Chain) Library(ctx context.Context, uri string) (*decl.RawLibrary, error) {
	var firstErr error
	for _, s := range c {
		if s == nil {
			continue
		}
		lib, err := s.Library(ctx, uri)
		if err == nil && lib != nil {
			return lib, nil
		}
		if err != nil && !errors.Is(err, resolve.ErrLibraryNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w: %s", resolve.ErrLibraryNotFound, uri)
}
