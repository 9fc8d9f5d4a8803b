package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

// Tool names.
const (
	EditorToolName  = "str_replace_editor"
	ManagerToolName = "file_manager"
)

// Server exposes the str_replace_editor and file_manager tools over one FileSystem. It implements
// uigen.ToolServer.
//
// Server adds no locking: like the FileSystem it wraps, it must not be called concurrently.
type Server struct {
	editor  TextEditor
	manager FileManager
	logger  *slog.Logger
}

// ServerOption represents the options for the Server.
type ServerOption func(*Server)

var toolList = []uigen.Tool{
	{
		Name: EditorToolName,
		Description: `
View, create and edit files in the project. "view" shows a file with line numbers
or lists a directory, "create" writes a new file, "str_replace" replaces every
occurrence of old_str with new_str, and "insert" adds new_str after insert_line.
Paths are absolute and rooted at "/".
        `,
		InputSchema: json.RawMessage(editorSchemaJSON),
	},
	{
		Name: ManagerToolName,
		Description: `
Rename or delete files and directories in the project. "rename" moves path to
new_path, creating missing parent directories. "delete" removes a file or a whole
directory tree.
        `,
		InputSchema: json.RawMessage(managerSchemaJSON),
	},
}

// NewServer creates a tool server operating on fs.
func NewServer(fs *vfs.FileSystem, options ...ServerOption) Server {
	s := Server{
		editor:  NewTextEditor(fs),
		manager: NewFileManager(fs),
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger.With(
			slog.String("package", "go-uigen"),
			slog.String("component", "tools"),
		)
	}
}

// ListTools implements uigen.ToolServer interface.
func (s Server) ListTools(context.Context) ([]uigen.Tool, error) {
	return toolList, nil
}

// CallTool implements uigen.ToolServer interface.
// The editor's text becomes the single text content of the result; the file manager's Result is
// returned as JSON text. IsError is set whenever the command failed. An error is returned only for
// unknown tools.
func (s Server) CallTool(ctx context.Context, params uigen.CallToolParams) (uigen.CallToolResult, error) {
	switch params.Name {
	case EditorToolName:
		return s.callEditor(ctx, params)
	case ManagerToolName:
		return s.callManager(ctx, params)
	default:
		return uigen.CallToolResult{}, fmt.Errorf("tool not found: %s", params.Name)
	}
}

func (s Server) callEditor(ctx context.Context, params uigen.CallToolParams) (uigen.CallToolResult, error) {
	var args EditorArgs
	var res EditorResult
	if err := decodeArgs(ctx, editorSchema, params.Arguments, &args); err != nil {
		res = failed("Error: Invalid input: " + err.Error())
	} else {
		res = s.editor.Call(args)
	}

	s.logger.Debug("str_replace_editor called",
		slog.String("command", args.Command),
		slog.String("path", args.Path),
		slog.Bool("failed", res.Failed),
	)

	return uigen.CallToolResult{
		Content: []uigen.Content{{Type: uigen.ContentTypeText, Text: res.Text}},
		IsError: res.Failed,
	}, nil
}

func (s Server) callManager(ctx context.Context, params uigen.CallToolParams) (uigen.CallToolResult, error) {
	var args ManagerArgs
	var res Result
	if err := decodeArgs(ctx, managerSchema, params.Arguments, &args); err != nil {
		res = Result{Error: "Invalid input: " + err.Error()}
	} else {
		res = s.manager.Call(args)
	}

	s.logger.Debug("file_manager called",
		slog.String("command", args.Command),
		slog.String("path", args.Path),
		slog.Bool("success", res.Success),
	)

	bs, err := json.Marshal(res)
	if err != nil {
		return uigen.CallToolResult{}, fmt.Errorf("failed to marshal file_manager result: %w", err)
	}
	return uigen.CallToolResult{
		Content: []uigen.Content{{Type: uigen.ContentTypeText, Text: string(bs)}},
		IsError: !res.Success,
	}, nil
}
