//go:build unix

package serialization

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps size bytes of f read-only.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED) //nolint:gosec // G115: size validated by caller
}

// munmapFile releases a mapping made by mmapFile.
func munmapFile(data []byte) error {
	return unix.Munmap(data)
}
