// Package fsutil provides the small set of file operations the installer
// performs on the appliance: atomic rewrites, byte-for-byte copies and
// idempotent removal.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/facebookgo/atomicfile"
)

// WriteFileAtomic replaces path with data. Readers never observe a partial
// file: the content goes to a temporary sibling which is renamed over path.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	return WriteFileAtomicFunc(path, data, perm, nil)
}

// WriteFileAtomicFunc is WriteFileAtomic with a prepare hook that receives the
// temporary file's path after data is written and before the rename. A hook
// error aborts the write and leaves path untouched.
func WriteFileAtomicFunc(path string, data []byte, perm fs.FileMode, prepare func(tmpPath string) error) error {
	f, err := atomicfile.New(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Abort()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if prepare != nil {
		if err := prepare(f.Name()); err != nil {
			_ = f.Abort()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// CopyFile copies src over dst byte for byte, keeping src's permission bits
// and modification time. dst is replaced atomically.
func CopyFile(src, dst string) error {
	in, info, err := openRegular(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := atomicfile.New(dst, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Abort()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyNew copies src to dst like CopyFile but refuses to touch an existing
// dst, returning an error matching fs.ErrExist instead.
func CopyNew(src, dst string) error {
	in, info, err := openRegular(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// RemoveIfExists deletes path. A missing file is not an error; the returned
// bool reports whether something was removed.
func RemoveIfExists(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to remove %s: %w", path, err)
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func openRegular(path string) (*os.File, fs.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s is not a regular file", path)
	}
	return f, info, nil
}
