package fsnode

import (
	"os"
	"time"
)

// ReadFunc produces a leaf node's current content on demand; it must
// never block on the device (every read serves cached data).
type ReadFunc func() ([]byte, error)

// WriteFunc translates a leaf node's new content into a C5 intention
// and enqueues it; it returns as soon as the intention is enqueued.
type WriteFunc func([]byte) error

// MTimeFunc returns the node's current modification time, letting a
// /proc leaf reflect its own per-field cache timestamp rather than a
// single mtime for the whole tree.
type MTimeFunc func() time.Time

// File is a leaf node backed by a ReadFunc and, for writable files, a
// WriteFunc.
type File struct {
	mode  os.FileMode
	read  ReadFunc
	write WriteFunc
	mtime MTimeFunc
	path  string
}

// NewFile constructs a leaf node. write and mtime may be nil: a nil
// write makes the node read-only; a nil mtime falls back to the
// current time on every Stat.
func NewFile(path string, mode os.FileMode, read ReadFunc, write WriteFunc, mtime MTimeFunc) *File {
	return &File{path: path, mode: mode, read: read, write: write, mtime: mtime}
}

func (f *File) Stat() (Attr, error) {
	data, err := f.read()
	if err != nil {
		return Attr{}, err
	}
	mt := time.Now()
	if f.mtime != nil {
		mt = f.mtime()
	}
	return Attr{Mode: f.mode, Size: int64(len(data)), ModTime: mt}, nil
}

func (f *File) Read() ([]byte, error) {
	return f.read()
}

func (f *File) Write(data []byte) error {
	if f.write == nil {
		return &ErrReadOnly{Path: f.path}
	}
	return f.write(data)
}

func (f *File) Readdir() ([]string, error) {
	return nil, &ErrNotDir{Path: f.path}
}

func (f *File) Lookup(name string) (Node, error) {
	return nil, &ErrNotDir{Path: f.path}
}
