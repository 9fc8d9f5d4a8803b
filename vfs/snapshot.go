package vfs

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/klauspost/compress/zstd"
)

// SnapshotNode is the serialized form of one node.
type SnapshotNode struct {
	Type    Kind   `json:"type"`
	Name    string `json:"name"`
	Path    Path   `json:"path"`
	Content string `json:"content,omitempty"`
}

// Snapshot maps every non-root path of a FileSystem to its serialized node.
type Snapshot map[Path]SnapshotNode

// Serialize captures the whole tree. The result shares nothing with f.
func (f *FileSystem) Serialize() Snapshot {
	snap := make(Snapshot)
	f.walk(Root, f.root, func(p Path, n *node) bool {
		sn := SnapshotNode{Type: n.kind, Name: n.name, Path: p}
		if n.kind == KindFile {
			sn.Content = n.content
		}
		snap[p] = sn
		return true
	})
	return snap
}

// Deserialize rebuilds a FileSystem from a snapshot. Keys are normalized; an entry for the root
// is ignored. Conflicting entries, such as a file that is also used as a directory, fail.
func Deserialize(snap Snapshot) (*FileSystem, error) {
	fs := New()
	// Ancestors sort before their descendants.
	for _, k := range snap.Paths() {
		p, err := ParsePath(string(k))
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
		}
		if p.IsRoot() {
			continue
		}
		sn := snap[k]
		switch sn.Type {
		case KindDirectory:
			err = fs.CreateDirectory(string(p))
		case KindFile:
			err = fs.CreateFile(string(p), sn.Content)
		default:
			err = fmt.Errorf("unknown node type %q at %s", sn.Type, p)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
		}
	}
	return fs, nil
}

// Paths returns the keys of the snapshot in lexical order.
func (s Snapshot) Paths() []Path {
	return slices.Sorted(maps.Keys(s))
}

// Files returns path to content for every file in the snapshot.
func (s Snapshot) Files() map[Path]string {
	files := make(map[Path]string)
	for p, sn := range s {
		if sn.Type == KindFile {
			files[p] = sn.Content
		}
	}
	return files
}

// EncodeSnapshot writes snap to w as zstd-compressed JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush zstd encoder: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
