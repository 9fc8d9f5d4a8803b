package vfs

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Glob returns the paths of all nodes matching pattern, in walk order. The pattern is matched
// against the full path with "/" as separator: "*" stays within one segment while "**" crosses
// directories. Patterns without a leading "/" or "*" are anchored at the root.
func (f *FileSystem) Glob(pattern string) ([]Path, error) {
	g, err := compileGlob(pattern)
	if err != nil {
		return nil, err
	}

	var matches []Path
	for e := range f.Walk() {
		if g.Match(string(e.Path)) {
			matches = append(matches, e.Path)
		}
	}
	return matches, nil
}

// Filter returns the subset of the snapshot whose paths match pattern, using Glob's rules.
func (s Snapshot) Filter(pattern string) (Snapshot, error) {
	g, err := compileGlob(pattern)
	if err != nil {
		return nil, err
	}

	out := make(Snapshot)
	for p, sn := range s {
		if g.Match(string(p)) {
			out[p] = sn
		}
	}
	return out, nil
}

func compileGlob(pattern string) (glob.Glob, error) {
	if !strings.HasPrefix(pattern, "/") && !strings.HasPrefix(pattern, "*") {
		pattern = "/" + pattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return g, nil
}
