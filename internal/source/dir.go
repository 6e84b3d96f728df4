package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
)

// YAMLDir serves libraries from *.yaml and *.yml files, one library per
// file. Files are indexed by URI when the directory is opened and decoded
// again on every read, so edits are picked up without reopening.
type YAMLDir struct {
	dir   string
	index map[string]string // uri -> path
}

var _ resolve.Source = (*YAMLDir)(nil)

// OpenYAMLDir indexes the YAML library files under dir.
func OpenYAMLDir(dir string) (*YAMLDir, []error) {
	files, err := findFiles(dir, ".yaml", ".yml")
	if err != nil {
		return nil, []error{err}
	}
	y := &YAMLDir{dir: dir, index: make(map[string]string, len(files))}
	var errs []error
	for _, path := range files {
		lib, err := readYAMLLibrary(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := y.index[lib.URI]; dup {
			errs = append(errs, &LoadError{Code: ErrCodeDuplicateURI, File: path,
				Message: fmt.Sprintf("library %q already defined in %s", lib.URI, prev)})
			continue
		}
		y.index[lib.URI] = path
	}
	return y, errs
}

// Library implements resolve.Source.
func (y *YAMLDir) Library(_ context.Context, uri string) (*decl.RawLibrary, error) {
	path, ok := y.index[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", resolve.ErrLibraryNotFound, uri)
	}
	lib, err := readYAMLLibrary(path)
	if err != nil {
		return nil, err
	}
	if lib.URI != uri {
		return nil, fmt.Errorf("%w: %s (file %s now declares %s)", resolve.ErrLibraryNotFound, uri, path, lib.URI)
	}
	return lib, nil
}

// URIs returns the indexed library URIs in sorted order.
func (y *YAMLDir) URIs() []string { return sortedKeys(y.index) }

func readYAMLLibrary(path string) (*decl.RawLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, File: path, Message: err.Error()}
	}
	var lib decl.RawLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, File: path, Message: err.Error()}
	}
	if lib.URI == "" {
		return nil, &LoadError{Code: ErrCodeMissingURI, File: path, Message: "library has no uri"}
	}
	return &lib, nil
}

// CUEDir serves libraries defined in *.cue files. Each file contributes
// libraries under a top-level "library" struct keyed by URI:
//
//	library: "example.com/shop": declarations: [{name: "Cart"}]
//
// CUE files are evaluated once, when the directory is opened.
type CUEDir struct {
	mem *Memory
}

var _ resolve.Source = (*CUEDir)(nil)

// OpenCUEDir evaluates the CUE library files under dir.
func OpenCUEDir(dir string) (*CUEDir, []error) {
	files, err := findFiles(dir, ".cue")
	if err != nil {
		return nil, []error{err}
	}
	c := &CUEDir{mem: NewMemory()}
	ctx := cuecontext.New()
	seen := make(map[string]string)
	var errs []error
	for _, path := range files {
		libs, fileErrs := compileCUEFile(ctx, path)
		errs = append(errs, fileErrs...)
		for _, lib := range libs {
			if prev, dup := seen[lib.URI]; dup {
				errs = append(errs, &LoadError{Code: ErrCodeDuplicateURI, File: path,
					Message: fmt.Sprintf("library %q already defined in %s", lib.URI, prev)})
				continue
			}
			seen[lib.URI] = path
			c.mem.Put(lib)
		}
	}
	return c, errs
}

// Library implements resolve.Source.
func (c *CUEDir) Library(ctx context.Context, uri string) (*decl.RawLibrary, error) {
	return c.mem.Library(ctx, uri)
}

// URIs returns the loaded library URIs in sorted order.
func (c *CUEDir) URIs() []string { return c.mem.URIs() }

func compileCUEFile(ctx *cue.Context, path string) ([]decl.RawLibrary, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, File: path, Message: err.Error()}}
	}
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, []error{cueLoadError(err, path)}
	}

	libsVal := v.LookupPath(cue.ParsePath("library"))
	if !libsVal.Exists() {
		return nil, nil
	}
	iter, err := libsVal.Fields()
	if err != nil {
		return nil, []error{cueLoadError(err, path)}
	}

	var libs []decl.RawLibrary
	var errs []error
	for iter.Next() {
		var lib decl.RawLibrary
		if err := iter.Value().Decode(&lib); err != nil {
			errs = append(errs, cueLoadError(err, path))
			continue
		}
		uri := iter.Selector().Unquoted()
		if lib.URI != "" && lib.URI != uri {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, File: path,
				Message: fmt.Sprintf("library %q declares uri %q", uri, lib.URI)})
			continue
		}
		lib.URI = uri
		libs = append(libs, lib)
	}
	return libs, errs
}

// Load reads every YAML and CUE library under dir, for bulk ingestion and
// validation. Errors are collected; libraries that loaded are still returned.
func Load(dir string) ([]decl.RawLibrary, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("library directory not accessible: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	y, errs := OpenYAMLDir(dir)
	c, cueErrs := OpenCUEDir(dir)
	errs = append(errs, cueErrs...)
	if y == nil || c == nil {
		return nil, errs
	}

	mem := NewMemory()
	for _, uri := range y.URIs() {
		lib, err := y.Library(context.Background(), uri)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mem.Put(*lib)
	}
	for _, lib := range c.mem.Libraries() {
		if _, err := mem.Library(context.Background(), lib.URI); err == nil {
			errs = append(errs, &LoadError{Code: ErrCodeDuplicateURI,
				Message: fmt.Sprintf("library %q defined in both YAML and CUE", lib.URI)})
			continue
		}
		mem.Put(lib)
	}
	if len(mem.URIs()) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no library files found in %s", dir)})
	}
	return mem.Libraries(), errs
}

func findFiles(dir string, exts ...string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range exts {
			if ext == e {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	sort.Strings(files)
	return files, nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
