package tools

import (
	"errors"
	"fmt"

	"github.com/MegaGrindStone/go-uigen/vfs"
)

// FileManager executes file_manager commands against a FileSystem.
type FileManager struct {
	fs *vfs.FileSystem
}

// Result is the structured outcome of a FileManager command.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewFileManager returns a FileManager working on fs.
func NewFileManager(fs *vfs.FileSystem) FileManager {
	return FileManager{fs: fs}
}

// Call decodes args and executes the resulting command.
func (m FileManager) Call(args ManagerArgs) Result {
	cmd, err := args.Decode()
	if err != nil {
		if errors.Is(err, ErrInvalidCommand) {
			return Result{Error: "Invalid command"}
		}
		return Result{Error: err.Error()}
	}
	return m.Execute(cmd)
}

// Execute runs cmd. Editor commands are rejected as invalid.
func (m FileManager) Execute(cmd Command) Result {
	switch c := cmd.(type) {
	case RenameCommand:
		if err := m.fs.Rename(c.Path, c.NewPath); err != nil {
			return Result{Error: fmt.Sprintf("Failed to rename %s to %s", c.Path, c.NewPath)}
		}
		return Result{Success: true, Message: fmt.Sprintf("Successfully renamed %s to %s", c.Path, c.NewPath)}
	case DeleteCommand:
		if err := m.fs.Delete(c.Path); err != nil {
			return Result{Error: fmt.Sprintf("Failed to delete %s", c.Path)}
		}
		return Result{Success: true, Message: fmt.Sprintf("Successfully deleted %s", c.Path)}
	case ViewCommand, CreateCommand, StrReplaceCommand, InsertCommand, UndoEditCommand:
		return Result{Error: "Invalid command"}
	default:
		panic(fmt.Sprintf("tools: unhandled command %T", cmd))
	}
}
