package vfs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind classifies a file difference between two snapshots.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change is the difference of a single file between two snapshots.
type Change struct {
	Path   Path
	Kind   ChangeKind
	Before string
	After  string
}

// Diff compares the files of two snapshots and returns the changes ordered by path.
// Directories only matter through the files they hold.
func Diff(before, after Snapshot) []Change {
	old, cur := before.Files(), after.Files()

	var changes []Change
	for p, content := range old {
		next, ok := cur[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Kind: ChangeRemoved, Before: content})
		case next != content:
			changes = append(changes, Change{Path: p, Kind: ChangeModified, Before: content, After: next})
		}
	}
	for p, content := range cur {
		if _, ok := old[p]; !ok {
			changes = append(changes, Change{Path: p, Kind: ChangeAdded, After: content})
		}
	}

	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(string(a.Path), string(b.Path)) })
	return changes
}

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// Unified renders the change as a line-based unified patch.
func (c Change) Unified() string {
	from, to := fmt.Sprintf("%s (original)", c.Path), fmt.Sprintf("%s (modified)", c.Path)
	switch c.Kind {
	case ChangeAdded:
		from = "/dev/null"
	case ChangeRemoved:
		to = "/dev/null"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", from)
	fmt.Fprintf(&b, "+++ %s\n", to)
	writeHunks(&b, lineDiff(normalizeLineEndings(c.Before), normalizeLineEndings(c.After)))
	return b.String()
}

func lineDiff(before, after string) []diffLine {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []diffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, diffLine{op: d.Type, text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

func writeHunks(b *strings.Builder, lines []diffLine) {
	var changed []int
	for i, l := range lines {
		if l.op != diffmatchpatch.DiffEqual {
			changed = append(changed, i)
		}
	}

	for len(changed) > 0 {
		// Changes closer than twice the context share a hunk.
		last := 0
		for last+1 < len(changed) && changed[last+1]-changed[last] <= 2*contextLines {
			last++
		}
		lo := max(changed[0]-contextLines, 0)
		hi := min(changed[last]+contextLines+1, len(lines))
		changed = changed[last+1:]

		oldStart, newStart := 1, 1
		for _, l := range lines[:lo] {
			if l.op != diffmatchpatch.DiffInsert {
				oldStart++
			}
			if l.op != diffmatchpatch.DiffDelete {
				newStart++
			}
		}
		oldLen, newLen := 0, 0
		for _, l := range lines[lo:hi] {
			if l.op != diffmatchpatch.DiffInsert {
				oldLen++
			}
			if l.op != diffmatchpatch.DiffDelete {
				newLen++
			}
		}
		// An empty side points at the line before the hunk.
		if oldLen == 0 {
			oldStart--
		}
		if newLen == 0 {
			newStart--
		}

		fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen)
		for _, l := range lines[lo:hi] {
			prefix := " "
			switch l.op {
			case diffmatchpatch.DiffDelete:
				prefix = "-"
			case diffmatchpatch.DiffInsert:
				prefix = "+"
			case diffmatchpatch.DiffEqual:
			}
			fmt.Fprintf(b, "%s%s\n", prefix, l.text)
		}
	}
}

// FormatDiff concatenates the unified patches of all changes.
func FormatDiff(changes []Change) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(c.Unified())
	}
	return b.String()
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
