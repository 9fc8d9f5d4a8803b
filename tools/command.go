package tools

import (
	"errors"
	"fmt"
)

// Command is one decoded tool command. The set of implementations is closed: ViewCommand,
// CreateCommand, StrReplaceCommand, InsertCommand, UndoEditCommand, RenameCommand and
// DeleteCommand.
type Command interface {
	// Target returns the path the command operates on, as given by the caller.
	Target() string

	command()
}

// LineRange is an inclusive, 1-indexed range of lines. An End of -1 means the last line.
type LineRange struct {
	Start int
	End   int
}

// ViewCommand shows a file with line numbers or lists a directory.
type ViewCommand struct {
	Path  string
	Range *LineRange
}

// CreateCommand creates a new file.
type CreateCommand struct {
	Path     string
	FileText string
}

// StrReplaceCommand replaces every occurrence of OldStr in a file.
type StrReplaceCommand struct {
	Path   string
	OldStr string
	NewStr string
}

// InsertCommand inserts NewStr as new lines after line Line; 0 prepends.
type InsertCommand struct {
	Path   string
	Line   int
	NewStr string
}

// UndoEditCommand asks to revert the last edit of a file. It is never supported.
type UndoEditCommand struct {
	Path string
}

// RenameCommand moves a file or directory.
type RenameCommand struct {
	Path    string
	NewPath string
}

// DeleteCommand removes a file or directory recursively.
type DeleteCommand struct {
	Path string
}

// Command names as they appear in tool arguments.
const (
	CommandView       = "view"
	CommandCreate     = "create"
	CommandStrReplace = "str_replace"
	CommandInsert     = "insert"
	CommandUndoEdit   = "undo_edit"
	CommandRename     = "rename"
	CommandDelete     = "delete"
)

var (
	// ErrInvalidCommand is returned when arguments name a command the tool does not know.
	ErrInvalidCommand = errors.New("invalid command")

	errPathRequired    = errors.New("path is required")
	errNewPathRequired = errors.New("new_path is required for rename command")
	errOldStrRequired  = errors.New("old_str is required for str_replace command")
	errViewRange       = errors.New("view_range must contain exactly two line numbers")
)

func (c ViewCommand) Target() string       { return c.Path }
func (c CreateCommand) Target() string     { return c.Path }
func (c StrReplaceCommand) Target() string { return c.Path }
func (c InsertCommand) Target() string     { return c.Path }
func (c UndoEditCommand) Target() string   { return c.Path }
func (c RenameCommand) Target() string     { return c.Path }
func (c DeleteCommand) Target() string     { return c.Path }

func (ViewCommand) command()       {}
func (CreateCommand) command()     {}
func (StrReplaceCommand) command() {}
func (InsertCommand) command()     {}
func (UndoEditCommand) command()   {}
func (RenameCommand) command()     {}
func (DeleteCommand) command()     {}

// Decode turns the arguments into one of the editor's commands.
func (a EditorArgs) Decode() (Command, error) {
	if a.Path == "" {
		return nil, errPathRequired
	}

	switch a.Command {
	case CommandView:
		cmd := ViewCommand{Path: a.Path}
		if a.ViewRange != nil {
			if len(a.ViewRange) != 2 {
				return nil, errViewRange
			}
			cmd.Range = &LineRange{Start: a.ViewRange[0], End: a.ViewRange[1]}
		}
		return cmd, nil
	case CommandCreate:
		return CreateCommand{Path: a.Path, FileText: deref(a.FileText)}, nil
	case CommandStrReplace:
		if a.OldStr == nil {
			return nil, errOldStrRequired
		}
		return StrReplaceCommand{Path: a.Path, OldStr: *a.OldStr, NewStr: deref(a.NewStr)}, nil
	case CommandInsert:
		line := 0
		if a.InsertLine != nil {
			line = *a.InsertLine
		}
		return InsertCommand{Path: a.Path, Line: line, NewStr: deref(a.NewStr)}, nil
	case CommandUndoEdit:
		return UndoEditCommand{Path: a.Path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, a.Command)
	}
}

// Decode turns the arguments into one of the file manager's commands.
func (a ManagerArgs) Decode() (Command, error) {
	switch a.Command {
	case CommandRename:
		if a.Path == "" {
			return nil, errPathRequired
		}
		if a.NewPath == nil || *a.NewPath == "" {
			return nil, errNewPathRequired
		}
		return RenameCommand{Path: a.Path, NewPath: *a.NewPath}, nil
	case CommandDelete:
		if a.Path == "" {
			return nil, errPathRequired
		}
		return DeleteCommand{Path: a.Path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, a.Command)
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
