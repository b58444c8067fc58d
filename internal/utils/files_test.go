package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTree(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.ts", "a/x.ts", "a/y/z.json"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(rel), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	require.NoError(t, os.Symlink("b.ts", filepath.Join(root, "link.ts")))

	files, err := ListTree(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.FromSlash("a/x.ts"),
		filepath.FromSlash("a/y/z.json"),
		"b.ts",
		"link.ts",
	}, files)
}

func TestListTree_MissingRoot(t *testing.T) {
	_, err := ListTree(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCopyEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0o755))

	dst := filepath.Join(dir, "out", "nested", "dst.sh")
	require.NoError(t, CopyEntry(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Overwrite truncates.
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o755))
	require.NoError(t, CopyEntry(src, dst))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestCopyEntry_Symlink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink("target.ts", link))

	dst := filepath.Join(dir, "copy", "link")
	require.NoError(t, CopyEntry(link, dst))
	// Copying again replaces the existing link.
	require.NoError(t, CopyEntry(link, dst))

	target, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, "target.ts", target)
}

func TestWithin(t *testing.T) {
	root := filepath.FromSlash("/work/lib")

	assert.True(t, Within(root, root))
	assert.True(t, Within(root, filepath.Join(root, "sub")))
	assert.False(t, Within(root, filepath.FromSlash("/work/library")))
	assert.False(t, Within(root, filepath.FromSlash("/work")))
	assert.False(t, Within(root, filepath.FromSlash("/work/..lib")))
}
