//go:build windows

package serialization

import (
	"errors"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapFile maps size bytes of f read-only.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	mapping, err := windows.CreateFileMapping(
		windows.Handle(f.Fd()),
		nil,
		windows.PAGE_READONLY,
		uint32(size>>32), //nolint:gosec // G115: high half
		uint32(size),     //nolint:gosec // G115: low half
		nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = windows.CloseHandle(mapping) }()

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}
	//nolint:gosec // G103: view is a live read-only mapping of size bytes
	return unsafe.Slice((*byte)(unsafe.Pointer(view)), int(size)), nil
}

// munmapFile releases a mapping made by mmapFile.
func munmapFile(data []byte) error {
	if len(data) == 0 {
		return errors.New("unmap: empty mapping")
	}
	return windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0])))
}
