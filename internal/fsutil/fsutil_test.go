package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	t.Run("creates file with mode", func(t *testing.T) {
		require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o640))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("replaces existing content", func(t *testing.T) {
		require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files left behind")
	})

	t.Run("missing directory", func(t *testing.T) {
		err := WriteFileAtomic(filepath.Join(dir, "nope", "out.txt"), []byte("x"), 0o600)
		require.Error(t, err)
	})
}

func TestWriteFileAtomicFunc(t *testing.T) {
	t.Run("prepare sees temporary file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "secret.conf")

		var seen string
		err := WriteFileAtomicFunc(path, []byte("value"), 0o640, func(tmpPath string) error {
			seen = tmpPath
			data, err := os.ReadFile(tmpPath)
			require.NoError(t, err)
			assert.Equal(t, "value", string(data))
			return nil
		})
		require.NoError(t, err)

		assert.NotEqual(t, path, seen)
		assert.Equal(t, dir, filepath.Dir(seen))
		assert.NoFileExists(t, seen)
		assert.FileExists(t, path)
	})

	t.Run("prepare error keeps existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "secret.conf")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o640))

		hookErr := errors.New("chown denied")
		err := WriteFileAtomicFunc(path, []byte("new"), 0o640, func(string) error {
			return hookErr
		})
		require.ErrorIs(t, err, hookErr)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file is removed")
	})
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "SharedTOTP.php")
	dst := filepath.Join(dir, "dest.php")
	content := []byte("<?php\n// opaque plugin\n\x00\x01binary")
	require.NoError(t, os.WriteFile(src, content, 0o644))
	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	t.Run("copies bytes mode and mtime", func(t *testing.T) {
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))
		require.NoError(t, CopyFile(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, content, data)

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o644), info.Mode().Perm())
		assert.True(t, info.ModTime().Equal(mtime))
	})

	t.Run("missing source", func(t *testing.T) {
		err := CopyFile(filepath.Join(dir, "missing.php"), dst)
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory source", func(t *testing.T) {
		err := CopyFile(dir, dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a regular file")
	})
}

func TestCopyNew(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "config.xml")
	require.NoError(t, os.WriteFile(src, []byte("<opnsense/>"), 0o644))

	dst := filepath.Join(dir, "config.xml.bak")
	require.NoError(t, CopyNew(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<opnsense/>", string(data))

	err = CopyNew(src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.conf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	removed, err := RemoveIfExists(path)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveIfExists(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCopyOwner(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, nil, 0o600))
	require.NoError(t, os.WriteFile(b, nil, 0o600))

	info, err := os.Stat(a)
	require.NoError(t, err)
	assert.NoError(t, CopyOwner(b, info))
}
