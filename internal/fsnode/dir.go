package fsnode

import (
	"os"
	"sort"
	"time"
)

// ListFunc returns a directory's current child names. It's called on
// every Readdir so newly-discovered instances (e.g. a switch id first
// seen in a notification, per the discovery-window design note) show
// up without rebuilding the tree.
type ListFunc func() []string

// LookupFunc resolves one child name to a Node, or ErrNotFound.
type LookupFunc func(name string) (Node, error)

// Dir is a directory node whose children are computed on demand
// rather than fixed at construction, so the tree stays in sync with
// which switch/input/script instances the cache currently considers
// valid.
type Dir struct {
	path   string
	list   ListFunc
	lookup LookupFunc
}

// NewDir constructs a directory node.
func NewDir(path string, list ListFunc, lookup LookupFunc) *Dir {
	return &Dir{path: path, list: list, lookup: lookup}
}

func (d *Dir) Stat() (Attr, error) {
	return Attr{Mode: os.ModeDir | 0755, ModTime: time.Now()}, nil
}

func (d *Dir) Read() ([]byte, error) {
	return nil, &ErrIsDir{Path: d.path}
}

func (d *Dir) Write(data []byte) error {
	return &ErrReadOnly{Path: d.path}
}

func (d *Dir) Readdir() ([]string, error) {
	names := d.list()
	sort.Strings(names)
	return names, nil
}

func (d *Dir) Lookup(name string) (Node, error) {
	return d.lookup(name)
}
