// Package mmap maps snapshot blobs read-only into memory.
//
//	f, err := mmap.Open("field-1.mfv3")
//	if err != nil { ... }
//	defer f.Close()
//	data := f.Bytes()
//
// Unix uses mmap(2) through golang.org/x/sys/unix; Windows uses
// CreateFileMapping/MapViewOfFile. Empty files are not mapped and yield a nil
// slice.
package mmap
