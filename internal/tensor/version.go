package tensor

import "sync/atomic"

// VersionCounter tracks in-place mutations of a buffer.
//
// Every view that shares a buffer also shares its counter, so a value saved for
// the backward pass can compare the version it recorded against the current one
// and refuse to use data that was overwritten in between.
type VersionCounter struct {
	version atomic.Uint32
}

// NewVersionCounter creates a counter starting at the given version.
func NewVersionCounter(initial uint32) *VersionCounter {
	vc := &VersionCounter{}
	vc.version.Store(initial)
	return vc
}

// Current returns the current version.
func (vc *VersionCounter) Current() uint32 {
	return vc.version.Load()
}

// Bump records one in-place mutation and returns the new version.
func (vc *VersionCounter) Bump() uint32 {
	return vc.version.Add(1)
}
