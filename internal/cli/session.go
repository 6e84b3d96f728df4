package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/mirror/internal/config"
	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
	"github.com/roach88/mirror/internal/source"
	"github.com/roach88/mirror/internal/store"
)

// directory is a configured library directory.
type directory interface {
	resolve.Source
	URIs() []string
}

// session bundles the configuration, snapshot store and resolver that
// query commands work against.
type session struct {
	cfg      *config.Config
	store    *store.Store
	resolver *resolve.Resolver
	dirs     []directory
}

// openStore loads configuration and opens the snapshot store it names.
func openStore(opts *RootOptions) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return cfg, st, nil
}

// openSession builds a resolver over the store, then the configured
// directories. A non-nil policy overrides the configured one.
func openSession(opts *RootOptions, policy *resolve.Policy) (*session, error) {
	cfg, st, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, store: st}

	chain := source.Chain{st}
	for _, dir := range cfg.Sources {
		y, errs := source.OpenYAMLDir(dir)
		c, cueErrs := source.OpenCUEDir(dir)
		for _, err := range append(errs, cueErrs...) {
			slog.Warn("library source problem", "dir", dir, "error", err)
		}
		if y != nil {
			chain = append(chain, y)
			s.dirs = append(s.dirs, y)
		}
		if c != nil {
			chain = append(chain, c)
			s.dirs = append(s.dirs, c)
		}
	}

	p := cfg.Policy()
	if policy != nil {
		p = *policy
	}
	r, err := resolve.New(chain,
		resolve.WithLogger(slog.Default()),
		resolve.WithCacheConfig(cfg.CacheSettings()),
		resolve.WithPolicy(p))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create resolver", err)
	}
	if cfg.Cache.SweepInterval > 0 {
		if err := r.EnablePeriodicCleanup(cfg.Cache.SweepInterval); err != nil {
			r.Close()
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to start cache sweep", err)
		}
	}
	s.resolver = r
	return s, nil
}

// Close stops the resolver and closes the store.
func (s *session) Close() error {
	return errors.Join(s.resolver.Close(), s.store.Close())
}

// references lists a reference for every declaration the store and the
// configured directories know about, store first, without duplicates.
func (s *session) references(ctx context.Context) ([]string, error) {
	libs, err := s.store.Libraries(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range s.dirs {
		for _, uri := range d.URIs() {
			lib, err := d.Library(ctx, uri)
			if err != nil {
				slog.Warn("skipping library", "library", uri, "error", err)
				continue
			}
			libs = append(libs, *lib)
		}
	}

	seen := make(map[string]bool)
	var refs []string
	for _, lib := range libs {
		for _, d := range lib.Declarations {
			ref := decl.Reference(lib.URI, d.Name)
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}
