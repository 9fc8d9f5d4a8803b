package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/tools"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

func manager(t *testing.T, fs *vfs.FileSystem, args map[string]any) (tools.Result, bool) {
	t.Helper()

	result := callTool(t, tools.NewServer(fs), tools.ManagerToolName, args)

	var res tools.Result
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &res))
	return res, result.IsError
}

func TestManagerRename(t *testing.T) {
	type testCase struct {
		name    string
		setup   func(t *testing.T, fs *vfs.FileSystem)
		path    string
		newPath string
		check   func(t *testing.T, fs *vfs.FileSystem)
	}

	testCases := []testCase{
		{
			name: "file",
			setup: func(t *testing.T, fs *vfs.FileSystem) {
				require.NoError(t, fs.CreateFile("/old.txt", "content"))
			},
			path:    "/old.txt",
			newPath: "/new.txt",
			check: func(t *testing.T, fs *vfs.FileSystem) {
				assert.False(t, fs.Exists("/old.txt"))
				content, err := fs.ReadFile("/new.txt")
				require.NoError(t, err)
				assert.Equal(t, "content", content)
			},
		},
		{
			name: "into another directory",
			setup: func(t *testing.T, fs *vfs.FileSystem) {
				require.NoError(t, fs.CreateFile("/file.txt", "x"))
				require.NoError(t, fs.CreateDirectory("/folder"))
			},
			path:    "/file.txt",
			newPath: "/folder/file.txt",
			check: func(t *testing.T, fs *vfs.FileSystem) {
				assert.False(t, fs.Exists("/file.txt"))
				assert.True(t, fs.Exists("/folder/file.txt"))
			},
		},
		{
			name: "creates parent directories",
			setup: func(t *testing.T, fs *vfs.FileSystem) {
				require.NoError(t, fs.CreateFile("/file.txt", "x"))
			},
			path:    "/file.txt",
			newPath: "/deeply/nested/path/file.txt",
			check: func(t *testing.T, fs *vfs.FileSystem) {
				assert.True(t, fs.Exists("/deeply"))
				assert.True(t, fs.Exists("/deeply/nested"))
				assert.True(t, fs.Exists("/deeply/nested/path"))
				assert.True(t, fs.Exists("/deeply/nested/path/file.txt"))
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, fs *vfs.FileSystem) {
				require.NoError(t, fs.CreateFile("/old-dir/file.txt", "content"))
			},
			path:    "/old-dir",
			newPath: "/new-dir",
			check: func(t *testing.T, fs *vfs.FileSystem) {
				assert.False(t, fs.Exists("/old-dir"))
				content, err := fs.ReadFile("/new-dir/file.txt")
				require.NoError(t, err)
				assert.Equal(t, "content", content)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := vfs.New()
			tc.setup(t, fs)

			res, isErr := manager(t, fs, map[string]any{"command": "rename", "path": tc.path, "new_path": tc.newPath})
			assert.True(t, res.Success)
			assert.False(t, isErr)
			assert.Equal(t, "Successfully renamed "+tc.path+" to "+tc.newPath, res.Message)
			tc.check(t, fs)
		})
	}
}

func TestManagerRenameFailures(t *testing.T) {
	fs := vfs.New()
	require.NoError(t, fs.CreateFile("/source.txt", "source"))
	require.NoError(t, fs.CreateFile("/dest.txt", "dest"))

	res, isErr := manager(t, fs, map[string]any{"command": "rename", "path": "/source.txt"})
	assert.Equal(t, tools.Result{Error: "new_path is required for rename command"}, res)
	assert.True(t, isErr)

	res, _ = manager(t, fs, map[string]any{"command": "rename", "path": "/source.txt", "new_path": ""})
	assert.Equal(t, "new_path is required for rename command", res.Error)

	res, _ = manager(t, fs, map[string]any{"command": "rename", "path": "/nonexistent.txt", "new_path": "/new.txt"})
	assert.Equal(t, tools.Result{Error: "Failed to rename /nonexistent.txt to /new.txt"}, res)

	res, _ = manager(t, fs, map[string]any{"command": "rename", "path": "/source.txt", "new_path": "/dest.txt"})
	assert.Equal(t, "Failed to rename /source.txt to /dest.txt", res.Error)
	source, err := fs.ReadFile("/source.txt")
	require.NoError(t, err)
	assert.Equal(t, "source", source)
	dest, err := fs.ReadFile("/dest.txt")
	require.NoError(t, err)
	assert.Equal(t, "dest", dest)
}

func TestManagerDelete(t *testing.T) {
	fs := vfs.New()
	require.NoError(t, fs.CreateFile("/file.txt", "x"))
	require.NoError(t, fs.CreateFile("/folder/file1.txt", "1"))
	require.NoError(t, fs.CreateDirectory("/folder/subfolder"))

	res, isErr := manager(t, fs, map[string]any{"command": "delete", "path": "/file.txt"})
	assert.Equal(t, tools.Result{Success: true, Message: "Successfully deleted /file.txt"}, res)
	assert.False(t, isErr)
	assert.False(t, fs.Exists("/file.txt"))

	res, _ = manager(t, fs, map[string]any{"command": "delete", "path": "/folder"})
	assert.Equal(t, "Successfully deleted /folder", res.Message)
	assert.False(t, fs.Exists("/folder"))
	assert.False(t, fs.Exists("/folder/file1.txt"))
	assert.False(t, fs.Exists("/folder/subfolder"))

	res, isErr = manager(t, fs, map[string]any{"command": "delete", "path": "/nonexistent.txt"})
	assert.Equal(t, tools.Result{Error: "Failed to delete /nonexistent.txt"}, res)
	assert.True(t, isErr)

	res, _ = manager(t, fs, map[string]any{"command": "delete", "path": "/"})
	assert.Equal(t, tools.Result{Error: "Failed to delete /"}, res)
	assert.True(t, fs.Exists("/"))
}

func TestManagerInvalidCommand(t *testing.T) {
	res, isErr := manager(t, vfs.New(), map[string]any{"command": "copy", "path": "/file.txt"})
	assert.Equal(t, tools.Result{Error: "Invalid command"}, res)
	assert.True(t, isErr)

	res, _ = manager(t, vfs.New(), map[string]any{"command": "view", "path": "/file.txt"})
	assert.Equal(t, "Invalid command", res.Error)
}

func TestServerListAndUnknownTool(t *testing.T) {
	s := tools.NewServer(vfs.New())

	list, err := s.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, tools.EditorToolName, list[0].Name)
	assert.Equal(t, tools.ManagerToolName, list[1].Name)
	for _, tool := range list {
		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.InputSchema, &schema), "schema of %s", tool.Name)
		assert.Equal(t, "object", schema["type"])
	}

	_, err = s.CallTool(context.Background(), uigen.CallToolParams{Name: "read_file", Arguments: json.RawMessage(`{}`)})
	assert.EqualError(t, err, "tool not found: read_file")
}

func TestDisplayMessage(t *testing.T) {
	type testCase struct {
		tool  string
		input string
		want  string
	}

	testCases := []testCase{
		{tool: "str_replace_editor", input: `{"command":"create","path":"/App.jsx"}`, want: "Creating /App.jsx"},
		{tool: "str_replace_editor", input: `{"command":"str_replace","path":"/a.js"}`, want: "Editing /a.js"},
		{tool: "str_replace_editor", input: `{"command":"insert","path":"/a.js"}`, want: "Editing /a.js"},
		{tool: "str_replace_editor", input: `{"command":"view","path":"/a.js"}`, want: "Viewing /a.js"},
		{tool: "str_replace_editor", input: `{"command":"undo_edit","path":"/a.js"}`, want: "str_replace_editor"},
		{tool: "file_manager", input: `{"command":"rename","path":"/a","new_path":"/b"}`, want: "Renaming /a → /b"},
		{tool: "file_manager", input: `{"command":"rename","path":"/a"}`, want: "Renaming /a"},
		{tool: "file_manager", input: `{"command":"delete","path":"/a"}`, want: "Deleting /a"},
		{tool: "file_manager", input: `{"command":"delete"}`, want: "file_manager"},
		{tool: "file_manager", input: `not json`, want: "file_manager"},
		{tool: "other", input: `{"command":"create","path":"/a"}`, want: "other"},
	}

	for _, tc := range testCases {
		if got := tools.DisplayMessage(tc.tool, json.RawMessage(tc.input)); got != tc.want {
			t.Errorf("DisplayMessage(%s, %s): expected %q, got %q", tc.tool, tc.input, tc.want, got)
		}
	}
}
