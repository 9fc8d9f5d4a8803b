package vfs_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MegaGrindStone/go-uigen/vfs"
)

func newWorkspace(t *testing.T) *vfs.FileSystem {
	t.Helper()

	fs := vfs.New()
	require.NoError(t, fs.CreateFile("/App.jsx", "import Counter from '@/components/Counter';\n"))
	require.NoError(t, fs.CreateFile("/components/Counter.jsx", "export default function Counter() {}\n"))
	require.NoError(t, fs.CreateFile("/empty.txt", ""))
	require.NoError(t, fs.CreateDirectory("/assets/icons"))
	return fs
}

func TestSerializeRoundTrip(t *testing.T) {
	fs := newWorkspace(t)
	snap := fs.Serialize()

	assert.Equal(t, vfs.SnapshotNode{
		Type:    vfs.KindFile,
		Name:    "Counter.jsx",
		Path:    "/components/Counter.jsx",
		Content: "export default function Counter() {}\n",
	}, snap["/components/Counter.jsx"])
	assert.Equal(t, vfs.KindDirectory, snap["/assets/icons"].Type)
	_, hasRoot := snap[vfs.Root]
	assert.False(t, hasRoot)

	restored, err := vfs.Deserialize(snap)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, restored.Serialize()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	content, err := restored.ReadFile("/empty.txt")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestDeserializeRejectsConflicts(t *testing.T) {
	snap := vfs.Snapshot{
		"/a":   {Type: vfs.KindFile, Name: "a", Path: "/a", Content: "x"},
		"/a/b": {Type: vfs.KindFile, Name: "b", Path: "/a/b"},
	}
	_, err := vfs.Deserialize(snap)
	assert.ErrorIs(t, err, vfs.ErrPathIsFile)

	_, err = vfs.Deserialize(vfs.Snapshot{"/x": {Type: "symlink"}})
	assert.Error(t, err)

	fs, err := vfs.Deserialize(vfs.Snapshot{
		"/":        {Type: vfs.KindDirectory},
		"nested/":  {Type: vfs.KindDirectory},
		"/n/f.txt": {Type: vfs.KindFile, Content: "f"},
	})
	require.NoError(t, err)
	assert.True(t, fs.Exists("/nested"))
	assert.True(t, fs.Exists("/n"))
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	snap := newWorkspace(t).Serialize()

	var buf bytes.Buffer
	require.NoError(t, vfs.EncodeSnapshot(&buf, snap))
	require.Greater(t, buf.Len(), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, buf.Bytes()[:4], "payload should be a zstd frame")

	decoded, err := vfs.DecodeSnapshot(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, decoded); diff != "" {
		t.Errorf("decoded snapshot mismatch (-want +got):\n%s", diff)
	}

	_, err = vfs.DecodeSnapshot(strings.NewReader("not zstd"))
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	fs := newWorkspace(t)
	before := fs.Serialize()

	require.NoError(t, fs.WriteFile("/App.jsx", "import Card from '@/components/Card';\n"))
	require.NoError(t, fs.Delete("/empty.txt"))
	require.NoError(t, fs.CreateFile("/components/Card.jsx", "card\n"))
	require.NoError(t, fs.CreateDirectory("/only/dirs"))

	changes := vfs.Diff(before, fs.Serialize())
	require.Len(t, changes, 3)

	assert.Equal(t, vfs.Path("/App.jsx"), changes[0].Path)
	assert.Equal(t, vfs.ChangeModified, changes[0].Kind)
	assert.Equal(t, vfs.Path("/components/Card.jsx"), changes[1].Path)
	assert.Equal(t, vfs.ChangeAdded, changes[1].Kind)
	assert.Equal(t, vfs.Path("/empty.txt"), changes[2].Path)
	assert.Equal(t, vfs.ChangeRemoved, changes[2].Kind)

	patch := changes[0].Unified()
	assert.True(t, strings.HasPrefix(patch, "--- /App.jsx (original)\n+++ /App.jsx (modified)\n"))
	assert.Equal(t, "--- /App.jsx (original)\n+++ /App.jsx (modified)\n"+
		"@@ -1,1 +1,1 @@\n"+
		"-import Counter from '@/components/Counter';\n"+
		"+import Card from '@/components/Card';\n", patch)
	assert.NotContains(t, patch, "%0A")
	assert.Contains(t, changes[1].Unified(), "--- /dev/null\n")

	assert.Empty(t, vfs.Diff(before, before))
	assert.Contains(t, vfs.FormatDiff(changes), "+++ /dev/null\n")
}

func TestUnifiedHunks(t *testing.T) {
	var before, after strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&before, "line%d\n", i)
		switch i {
		case 2:
			after.WriteString("second\n")
		case 18:
		default:
			fmt.Fprintf(&after, "line%d\n", i)
		}
	}
	after.WriteString("line21\n")

	change := vfs.Change{Path: "/a.txt", Kind: vfs.ChangeModified, Before: before.String(), After: after.String()}

	want := "--- /a.txt (original)\n+++ /a.txt (modified)\n" +
		"@@ -1,5 +1,5 @@\n" +
		" line1\n-line2\n+second\n line3\n line4\n line5\n" +
		"@@ -15,6 +15,6 @@\n" +
		" line15\n line16\n line17\n-line18\n line19\n line20\n+line21\n"
	if diff := cmp.Diff(want, change.Unified()); diff != "" {
		t.Errorf("unexpected patch (-want +got):\n%s", diff)
	}

	added := vfs.Change{Path: "/new.txt", Kind: vfs.ChangeAdded, After: "a\r\nb\r\n"}
	assert.Equal(t, "--- /dev/null\n+++ /new.txt (modified)\n@@ -0,0 +1,2 @@\n+a\n+b\n", added.Unified())

	removed := vfs.Change{Path: "/old.txt", Kind: vfs.ChangeRemoved, Before: "a\n"}
	assert.Equal(t, "--- /old.txt (original)\n+++ /dev/null\n@@ -1,1 +0,0 @@\n-a\n", removed.Unified())
}

func TestGlob(t *testing.T) {
	fs := newWorkspace(t)
	require.NoError(t, fs.CreateFile("/components/ui/Button.jsx", ""))

	matches, err := fs.Glob("**.jsx")
	require.NoError(t, err)
	assert.Equal(t, []vfs.Path{"/components/ui/Button.jsx", "/components/Counter.jsx", "/App.jsx"}, matches)

	matches, err = fs.Glob("/components/*.jsx")
	require.NoError(t, err)
	assert.Equal(t, []vfs.Path{"/components/Counter.jsx"}, matches)

	matches, err = fs.Glob("components/*")
	require.NoError(t, err)
	assert.Equal(t, []vfs.Path{"/components/ui", "/components/Counter.jsx"}, matches)

	_, err = fs.Glob("[")
	assert.Error(t, err)

	filtered, err := fs.Serialize().Filter("/components/**")
	require.NoError(t, err)
	assert.Len(t, filtered, 3)
}
