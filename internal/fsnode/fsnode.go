// Package fsnode presents the device session's cache and intention
// layer as a tree of named nodes for the filesystem driver adaptor.
// Nodes have no separate open, flush or release step: Write takes a
// file's whole new content and enqueues the intention at once. No real
// kernel mount is wired here — no FUSE binding
// library appears anywhere in the retrieved corpus (see DESIGN.md) —
// but the Node interface is shaped so a thin binding to
// bazil.org/fuse or hanwen/go-fuse later only has to translate kernel
// callbacks into these same five methods.
package fsnode

import (
	"os"
	"time"
)

// Node is one file or directory in the tree. Every method may be
// called concurrently by multiple goroutines, mirroring the unbounded
// per-request handler pool a real kernel driver would hand out.
type Node interface {
	// Stat returns the node's mode and modification time for directory
	// listings and attribute lookups.
	Stat() (Attr, error)
	// Read returns the node's full current content. Directories return
	// ErrIsDir.
	Read() ([]byte, error)
	// Write replaces the node's content with data, translating it into
	// a C5 intention. It returns as soon as the intention is enqueued;
	// it never blocks on the device's response (fire-and-forget).
	Write(data []byte) error
	// Readdir lists a directory's children. Files return ErrNotDir.
	Readdir() ([]string, error)
	// Lookup resolves one path component to a child Node.
	Lookup(name string) (Node, error)
}

// Attr is the subset of POSIX file attributes the filesystem surface
// needs: mode bits (including the directory bit) and modification
// time.
type Attr struct {
	Mode    os.FileMode
	Size    int64
	ModTime time.Time
}

// ErrIsDir is returned by Read on a directory node.
type ErrIsDir struct{ Path string }

func (e *ErrIsDir) Error() string { return "is a directory: " + e.Path }

// ErrNotDir is returned by Readdir on a non-directory node.
type ErrNotDir struct{ Path string }

func (e *ErrNotDir) Error() string { return "not a directory: " + e.Path }

// ErrNotFound is returned by Lookup when name has no child node.
type ErrNotFound struct{ Path string }

func (e *ErrNotFound) Error() string { return "not found: " + e.Path }

// ErrReadOnly is returned by Write on a node with no write handler
// (every /proc file except output, and any node with no fsnode.WriteFunc
// configured).
type ErrReadOnly struct{ Path string }

func (e *ErrReadOnly) Error() string { return "read-only: " + e.Path }

// ErrInvalidArgument is returned by Write when data can't be
// translated into a valid intention (e.g. invalid JSON, or an
// unrecognised /proc/switch/N/output boolean spelling).
type ErrInvalidArgument struct{ Path string }

func (e *ErrInvalidArgument) Error() string { return "invalid argument: " + e.Path }
