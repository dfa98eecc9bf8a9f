//go:build unix

package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// CopyOwner gives path the uid/gid recorded in info. Used after an atomic
// rewrite, which otherwise leaves the file owned by the writing process.
func CopyOwner(path string, info fs.FileInfo) error {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Lchown(path, int(st.Uid), int(st.Gid)); err != nil {
		return fmt.Errorf("failed to restore ownership of %s: %w", path, err)
	}
	return nil
}
