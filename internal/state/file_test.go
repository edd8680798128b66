package state_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikitosik2311/parserwb/internal/state"
)

func TestFileStore_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
		want    []string
		wantErr bool
	}{
		{name: "missing file", content: nil, want: []string{}},
		{name: "empty array", content: ptr(`[]`), want: []string{}},
		{name: "entries", content: ptr(`["b", "a"]`), want: []string{"a", "b"}},
		{name: "null", content: ptr(`null`), want: []string{}},
		{name: "malformed", content: ptr(`["a",`), want: []string{}, wantErr: true},
		{name: "wrong type", content: ptr(`{"a":1}`), want: []string{}, wantErr: true},
		{name: "empty file", content: ptr(``), want: []string{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "notified.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}

			s, err := state.NewFileStore(path).Load(context.Background())
			require.NotNil(t, s)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, s.Sorted())
		})
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notified.json")
	fs := state.NewFileStore(path)
	ctx := context.Background()

	want := state.NewSet("Iphone 16__123__49999", "Айфон 16__7__41000")
	require.NoError(t, fs.Save(ctx, want))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_SaveFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notified.json")
	fs := state.NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), state.NewSet("б<&>", "a")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"a\",\n  \"б<&>\"\n]\n", string(data))
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notified.json")
	fs := state.NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, state.NewSet("a", "b", "c")))
	require.NoError(t, fs.Save(ctx, state.NewSet("d")))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, got.Sorted())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_SaveMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "notified.json")
	err := state.NewFileStore(path).Save(context.Background(), state.NewSet("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating temp state file")
}

func TestFileStore_Ping(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, state.NewFileStore(filepath.Join(dir, "n.json")).Ping(context.Background()))
	require.Error(t, state.NewFileStore(filepath.Join(dir, "nope", "n.json")).Ping(context.Background()))
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, state.DefaultPath, state.NewFileStore("").Path())
}

func ptr(s string) *string { return &s }
