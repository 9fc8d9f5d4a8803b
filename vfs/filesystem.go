package vfs

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Kind tells files and directories apart.
type Kind string

// Node kinds.
const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry describes a single node of a FileSystem.
type Entry struct {
	Name string
	Path Path
	Kind Kind
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDirectory }

// FileSystem is an in-memory tree of directories and text files rooted at "/".
//
// Every non-root node has exactly one parent directory, ancestors are created on demand and
// deleting a directory removes its whole subtree. Each mutating method either succeeds or leaves
// the tree untouched.
//
// A FileSystem is not safe for concurrent use; callers owning one per workspace must serialize
// access themselves.
type FileSystem struct {
	root *node
}

type node struct {
	name     string
	kind     Kind
	content  string
	children map[string]*node
}

// New returns an empty FileSystem containing only the root directory.
func New() *FileSystem {
	return &FileSystem{root: newDir("/")}
}

func newDir(name string) *node {
	return &node{name: name, kind: KindDirectory, children: make(map[string]*node)}
}

// Exists reports whether a node exists at path. Invalid paths never exist.
func (f *FileSystem) Exists(path string) bool {
	p, err := ParsePath(path)
	if err != nil {
		return false
	}
	_, err = f.lookup(p)
	return err == nil
}

// Stat returns the entry at path.
func (f *FileSystem) Stat(path string) (Entry, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Entry{}, err
	}
	n, err := f.lookup(p)
	if err != nil {
		return Entry{}, err
	}
	return n.entry(p), nil
}

// CreateDirectory creates the directory at path together with any missing ancestors. Creating a
// directory that already exists is a no-op. It fails with ErrPathIsFile when a file occupies the
// path or one of its ancestors.
func (f *FileSystem) CreateDirectory(path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if _, err := f.ensureDir(p); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p, err)
	}
	return nil
}

// CreateFile creates a file holding content at path, creating missing ancestors. It fails with
// ErrAlreadyExists when any node already exists at path.
func (f *FileSystem) CreateFile(path, content string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if _, err := f.lookup(p); err == nil {
		return fmt.Errorf("failed to create file %s: %w", p, ErrAlreadyExists)
	}
	parent, err := f.ensureDir(p.Parent())
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", p, err)
	}
	parent.children[p.Base()] = &node{name: p.Base(), kind: KindFile, content: content}
	return nil
}

// ReadFile returns the content of the file at path.
func (f *FileSystem) ReadFile(path string) (string, error) {
	p, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	n, err := f.lookup(p)
	if err != nil {
		return "", err
	}
	if n.kind == KindDirectory {
		return "", fmt.Errorf("failed to read %s: %w", p, ErrIsDirectory)
	}
	return n.content, nil
}

// WriteFile replaces the content of the file at path, creating it and its ancestors when missing.
func (f *FileSystem) WriteFile(path, content string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	n, err := f.lookup(p)
	if err != nil {
		return f.CreateFile(string(p), content)
	}
	if n.kind == KindDirectory {
		return fmt.Errorf("failed to write %s: %w", p, ErrIsDirectory)
	}
	n.content = content
	return nil
}

// ListDirectory returns the children of the directory at path: directories first, then files,
// each group ordered by name.
func (f *FileSystem) ListDirectory(path string) ([]Entry, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	n, err := f.lookup(p)
	if err != nil {
		return nil, err
	}
	if n.kind != KindDirectory {
		return nil, fmt.Errorf("failed to list %s: %w", p, ErrNotDirectory)
	}

	entries := make([]Entry, 0, len(n.children))
	for _, child := range n.sortedChildren() {
		entries = append(entries, child.entry(p.Join(child.name)))
	}
	return entries, nil
}

// Rename moves the node at src, with its whole subtree, to dst. Missing ancestors of dst are
// created. Every failure wraps ErrRenameFailed together with the cause: ErrNotFound for a missing
// source, ErrAlreadyExists for an occupied destination, ErrRootImmutable for the root,
// ErrPathIsFile when a destination ancestor is a file and ErrInvalidPath when dst lies inside src.
func (f *FileSystem) Rename(src, dst string) error {
	from, err := ParsePath(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenameFailed, err)
	}
	to, err := ParsePath(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenameFailed, err)
	}
	if from.IsRoot() {
		return fmt.Errorf("%w: %w", ErrRenameFailed, ErrRootImmutable)
	}

	n, err := f.lookup(from)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRenameFailed, from, err)
	}
	if _, err := f.lookup(to); err == nil {
		return fmt.Errorf("%w: %s: %w", ErrRenameFailed, to, ErrAlreadyExists)
	}
	if from.Contains(to) {
		return fmt.Errorf("%w: %w: %s is inside %s", ErrRenameFailed, ErrInvalidPath, to, from)
	}
	if err := f.checkDirPath(to.Parent()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRenameFailed, to, err)
	}

	newParent, err := f.ensureDir(to.Parent())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRenameFailed, to, err)
	}
	oldParent, _ := f.lookup(from.Parent())
	delete(oldParent.children, n.name)
	n.name = to.Base()
	newParent.children[n.name] = n
	return nil
}

// Delete removes the node at path; directories are removed with everything beneath them. Every
// failure wraps ErrDeleteFailed together with the cause.
func (f *FileSystem) Delete(path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	if p.IsRoot() {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, ErrRootImmutable)
	}
	n, err := f.lookup(p)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, p, err)
	}
	parent, _ := f.lookup(p.Parent())
	delete(parent.children, n.name)
	return nil
}

// Walk yields every node below the root depth-first, in listing order.
func (f *FileSystem) Walk() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		f.walk(Root, f.root, func(p Path, n *node) bool {
			return yield(n.entry(p))
		})
	}
}

func (f *FileSystem) walk(p Path, dir *node, fn func(Path, *node) bool) bool {
	for _, child := range dir.sortedChildren() {
		cp := p.Join(child.name)
		if !fn(cp, child) {
			return false
		}
		if child.kind == KindDirectory && !f.walk(cp, child, fn) {
			return false
		}
	}
	return true
}

func (f *FileSystem) lookup(p Path) (*node, error) {
	n := f.root
	for _, seg := range p.Segments() {
		if n.kind != KindDirectory {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		child, ok := n.children[seg]
		if !ok {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		n = child
	}
	return n, nil
}

// checkDirPath verifies that p could be used as a directory without creating anything.
func (f *FileSystem) checkDirPath(p Path) error {
	n := f.root
	walked := Root
	for _, seg := range p.Segments() {
		child, ok := n.children[seg]
		if !ok {
			return nil
		}
		walked = walked.Join(seg)
		if child.kind != KindDirectory {
			return fmt.Errorf("%s: %w", walked, ErrPathIsFile)
		}
		n = child
	}
	return nil
}

// ensureDir walks p creating missing directories. Creation only starts once a segment is missing,
// so a file encountered on the way fails the call before anything is created.
func (f *FileSystem) ensureDir(p Path) (*node, error) {
	n := f.root
	walked := Root
	for _, seg := range p.Segments() {
		walked = walked.Join(seg)
		child, ok := n.children[seg]
		if !ok {
			child = newDir(seg)
			n.children[seg] = child
		}
		if child.kind != KindDirectory {
			return nil, fmt.Errorf("%s: %w", walked, ErrPathIsFile)
		}
		n = child
	}
	return n, nil
}

func (n *node) entry(p Path) Entry {
	name := n.name
	if p.IsRoot() {
		name = string(Root)
	}
	return Entry{Name: name, Path: p, Kind: n.kind}
}

func (n *node) sortedChildren() []*node {
	children := make([]*node, 0, len(n.children))
	for _, child := range n.children {
		children = append(children, child)
	}
	slices.SortFunc(children, func(a, b *node) int {
		if a.kind != b.kind {
			if a.kind == KindDirectory {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	return children
}
