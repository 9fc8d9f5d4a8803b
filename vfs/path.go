package vfs

import (
	"fmt"
	"strings"
)

// Path is a normalized absolute path inside a FileSystem. A valid Path always starts with "/",
// never ends with "/" unless it is the root, and never contains empty, "." or ".." segments.
// Paths are case-sensitive.
type Path string

// Root is the path of the root directory.
const Root Path = "/"

// ParsePath normalizes raw into a Path. A missing leading slash is added, repeated slashes are
// collapsed and a trailing slash is dropped. Relative segments ("." and ".."), NUL bytes and the
// empty string are rejected with ErrInvalidPath.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidPath, raw)
	}

	segments := make([]string, 0, strings.Count(raw, "/")+1)
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "":
			continue
		case ".", "..":
			return "", fmt.Errorf("%w: %q contains relative segment %q", ErrInvalidPath, raw, seg)
		}
		segments = append(segments, seg)
	}

	return Path("/" + strings.Join(segments, "/")), nil
}

// MustPath is like ParsePath but panics on invalid input. It is meant for constants in tests
// and fixtures.
func MustPath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// IsRoot reports whether p is the root directory.
func (p Path) IsRoot() bool { return p == Root }

// Parent returns the directory containing p. The root is its own parent.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i <= 0 {
		return Root
	}
	return p[:i]
}

// Base returns the last segment of p, or "/" for the root.
func (p Path) Base() string {
	if p.IsRoot() {
		return string(Root)
	}
	return string(p[strings.LastIndexByte(string(p), '/')+1:])
}

// Segments returns the names along p from the root, excluding the root itself.
func (p Path) Segments() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(string(p[1:]), "/")
}

// Join appends a single child name to p.
func (p Path) Join(name string) Path {
	if p.IsRoot() {
		return Path("/" + name)
	}
	return Path(string(p) + "/" + name)
}

// Contains reports whether other is p itself or lies somewhere below it.
func (p Path) Contains(other Path) bool {
	if p.IsRoot() || p == other {
		return true
	}
	return strings.HasPrefix(string(other), string(p)+"/")
}

func (p Path) String() string { return string(p) }
