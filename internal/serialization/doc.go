// Package serialization persists checkpoint stacks in the .bsnp format.
//
// A .bsnp file holds exactly what a checkpoint.Stack holds: an ordered list
// of blob queues. It adds no dtype, shape or node information, so a file can
// only be restored into a graph of the same shape built by the same program.
//
//	Format Structure:
//	  [4 bytes: Magic "BSNP"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [4 bytes: Reserved]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [8 bytes: Data Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the data section]
//	  [Header: JSON metadata]
//	  [Padding to a 64-byte boundary]
//	  [Data: framed blobs, back to back, in stack order]
//
// Example usage:
//
//	stack, err := checkpoint.Save(y.GradFn())
//	...
//	if err := serialization.WriteStack("replay.bsnp", stack); err != nil {
//	    log.Fatal(err)
//	}
//
//	stack, err = serialization.ReadStack("replay.bsnp")
//	...
//	err = checkpoint.Restore(z.GradFn(), stack)
package serialization
