package pak

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestArchive creates a small archive in a temp directory.
func writeTestArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pk3")
	err := Write(path, map[string][]byte{
		"scripts/base.shader":    []byte("textures/base/floor\n{\n}\n"),
		"textures/base/wall.tga": []byte("not really a tga"),
		"maps/test.bsp":          []byte("IBSP"),
	})
	require.NoError(t, err)
	return path
}

func TestOpenAndList(t *testing.T) {
	archive, err := Open(writeTestArchive(t))
	require.NoError(t, err)
	defer archive.Close()

	files := archive.List()
	assert.ElementsMatch(t, []string{
		"maps/test.bsp",
		"scripts/base.shader",
		"textures/base/wall.tga",
	}, files)

	entries := archive.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "maps/test.bsp", entries[0].Name)
	assert.Equal(t, uint64(4), entries[0].UncompressedSize)
}

func TestContainsIgnoresCase(t *testing.T) {
	archive, err := Open(writeTestArchive(t))
	require.NoError(t, err)
	defer archive.Close()

	assert.True(t, archive.Contains("textures/base/wall.tga"))
	assert.True(t, archive.Contains("TEXTURES\\BASE\\WALL.TGA"))
	assert.False(t, archive.Contains("textures/base/missing.tga"))
}

func TestRead(t *testing.T) {
	archive, err := Open(writeTestArchive(t))
	require.NoError(t, err)
	defer archive.Close()

	data, err := archive.Read("scripts/base.shader")
	require.NoError(t, err)
	assert.Equal(t, "textures/base/floor\n{\n}\n", string(data))

	_, err = archive.Read("scripts/missing.shader")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWalk(t *testing.T) {
	archive, err := Open(writeTestArchive(t))
	require.NoError(t, err)
	defer archive.Close()

	seen := make(map[string]int)
	err = archive.Walk(func(name string, read func() ([]byte, error)) error {
		data, err := read()
		if err != nil {
			return err
		}
		seen[name] = len(data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, seen["maps/test.bsp"])
	assert.Len(t, seen, 3)

	stop := errors.New("stop")
	calls := 0
	err = archive.Walk(func(string, func() ([]byte, error)) error {
		calls++
		return stop
	})
	assert.True(t, errors.Is(err, stop))
	assert.Equal(t, 1, calls)
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pk3")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSourceRecognition(t *testing.T) {
	tests := []struct {
		name      string
		archive   bool
		directory bool
	}{
		{"pak0.pk3", true, false},
		{"res-textures_0.1.dpk", true, false},
		{"mymod.pk3dir", false, true},
		{"unvanquished_0.52.dpkdir", false, true},
		{"readme.txt", false, false},
		{"PAK0.PK3", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.archive, IsArchive(tt.name))
			assert.Equal(t, tt.directory, IsDirectory(tt.name))
			assert.Equal(t, tt.archive || tt.directory, IsSource(tt.name))
		})
	}
}

func TestExtAndComposite(t *testing.T) {
	assert.Equal(t, "tga", Ext("textures/base/wall.TGA"))
	assert.Equal(t, "", Ext("textures/base/wall"))
	assert.Equal(t, "/game/pak0.pk3:textures/a.png", Composite("/game/pak0.pk3", "textures/a.png"))
}
