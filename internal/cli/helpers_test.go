package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const shopYAML = `uri: example.com/shop
declarations:
  - name: Entity
    abstract: true
    fields:
      - name: id
        type: {name: string, builtin: true}
        final: true
  - name: Cart
    superclass: {name: Entity}
    fields:
      - name: owner
        type: {name: string, builtin: true}
        nullable: true
    methods:
      - name: ""
        kind: constructor
      - name: add
        return_type: {name: int, builtin: true}
        parameters:
          - name: item
            type: {name: Item}
          - name: qty
            named: true
            default: 1
        annotations:
          - type: {name: Reflectable}
  - name: GiftCart
    superclass: {name: Cart}
  - name: Item
  - name: Reflectable
    annotation_type: true
`

const brokenYAML = `uri: example.com/broken
declarations:
  - name: Thing
    superclass: {name: Missing}
  - name: Thing
`

// testEnv is a library directory and a config file pointing at a fresh
// store in a temp directory.
type testEnv struct {
	libDir string
	config string
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		libDir: filepath.Join(root, "libraries"),
		config: filepath.Join(root, "mirror.yaml"),
		dbPath: filepath.Join(root, "mirror.db"),
	}
	require.NoError(t, os.MkdirAll(env.libDir, 0o755))
	env.writeLibrary(t, "shop.yaml", shopYAML)
	require.NoError(t, os.WriteFile(env.config, []byte("store:\n  path: "+env.dbPath+"\n"), 0o644))
	return env
}

func (e *testEnv) writeLibrary(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.libDir, name), []byte(content), 0o644))
}

func (e *testEnv) opts(format string) *RootOptions {
	return &RootOptions{Format: format, Config: e.config}
}

// run executes a command built by newCmd with args, returning stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// ingested returns an env whose store already holds the shop library.
func ingested(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	_, err := run(t, NewIngestCommand(env.opts("text")), env.libDir)
	require.NoError(t, err)
	return env
}
