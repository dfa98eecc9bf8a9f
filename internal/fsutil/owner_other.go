//go:build !unix

package fsutil

import "io/fs"

// CopyOwner is a no-op where Unix ownership does not exist.
func CopyOwner(path string, info fs.FileInfo) error {
	return nil
}
