package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MegaGrindStone/go-uigen/vfs"
)

// TextEditor executes str_replace_editor commands against a FileSystem. Every outcome, including
// failures, is a line of text meant for the model.
type TextEditor struct {
	fs *vfs.FileSystem
}

// EditorResult is the outcome of a TextEditor command.
type EditorResult struct {
	Text   string
	Failed bool
}

const undoEditUnsupported = "Error: undo_edit command is not supported in this version. Use str_replace to revert changes."

// NewTextEditor returns a TextEditor working on fs.
func NewTextEditor(fs *vfs.FileSystem) TextEditor {
	return TextEditor{fs: fs}
}

// Call decodes args and executes the resulting command.
func (e TextEditor) Call(args EditorArgs) EditorResult {
	cmd, err := args.Decode()
	if err != nil {
		if errors.Is(err, ErrInvalidCommand) {
			return failed("Error: Invalid command")
		}
		return failed("Error: " + err.Error())
	}
	return e.Execute(cmd)
}

// Execute runs cmd. Rename and delete belong to the file manager and are rejected as invalid.
func (e TextEditor) Execute(cmd Command) EditorResult {
	switch c := cmd.(type) {
	case ViewCommand:
		return e.view(c)
	case CreateCommand:
		return e.create(c)
	case StrReplaceCommand:
		return e.strReplace(c)
	case InsertCommand:
		return e.insert(c)
	case UndoEditCommand:
		return failed(undoEditUnsupported)
	case RenameCommand, DeleteCommand:
		return failed("Error: Invalid command")
	default:
		panic(fmt.Sprintf("tools: unhandled command %T", cmd))
	}
}

func (e TextEditor) view(c ViewCommand) EditorResult {
	entry, err := e.fs.Stat(c.Path)
	if err != nil {
		if errors.Is(err, vfs.ErrInvalidPath) {
			return failed("Error: Invalid path: " + c.Path)
		}
		return failed("File not found: " + c.Path)
	}

	if entry.IsDir() {
		entries, err := e.fs.ListDirectory(c.Path)
		if err != nil {
			return failed("Error: " + err.Error())
		}
		if len(entries) == 0 {
			return ok("(empty directory)")
		}
		lines := make([]string, 0, len(entries))
		for _, en := range entries {
			if en.IsDir() {
				lines = append(lines, "[DIR] "+en.Name)
				continue
			}
			lines = append(lines, "[FILE] "+en.Name)
		}
		return ok(strings.Join(lines, "\n"))
	}

	content, err := e.fs.ReadFile(c.Path)
	if err != nil {
		return failed("Error: " + err.Error())
	}

	lines := strings.Split(content, "\n")
	start, end := 1, len(lines)
	if c.Range != nil {
		r := *c.Range
		if r.End < -1 || (r.End != -1 && r.End < r.Start) || r.Start > len(lines) {
			return failed(fmt.Sprintf("Error: Invalid view_range: [%d, %d]", r.Start, r.End))
		}
		start = max(r.Start, 1)
		if r.End >= 0 && r.End < end {
			end = r.End
		}
	}

	numbered := make([]string, 0, max(end-start+1, 0))
	for i := start; i <= end; i++ {
		numbered = append(numbered, fmt.Sprintf("%d\t%s", i, lines[i-1]))
	}
	return ok(strings.Join(numbered, "\n"))
}

func (e TextEditor) create(c CreateCommand) EditorResult {
	err := e.fs.CreateFile(c.Path, c.FileText)
	switch {
	case err == nil:
		return ok("File created: " + c.Path)
	case errors.Is(err, vfs.ErrAlreadyExists):
		return failed("Error: File already exists: " + c.Path)
	case errors.Is(err, vfs.ErrPathIsFile):
		return failed("Error: Parent path is a file: " + c.Path)
	case errors.Is(err, vfs.ErrInvalidPath):
		return failed("Error: Invalid path: " + c.Path)
	default:
		return failed("Error: " + err.Error())
	}
}

func (e TextEditor) strReplace(c StrReplaceCommand) EditorResult {
	content, res, found := e.editable(c.Path)
	if !found {
		return res
	}
	if c.OldStr == "" {
		return failed("Error: old_str must not be empty")
	}

	n := strings.Count(content, c.OldStr)
	if n == 0 {
		return failed(`Error: String not found in file: "` + c.OldStr + `"`)
	}
	if err := e.fs.WriteFile(c.Path, strings.ReplaceAll(content, c.OldStr, c.NewStr)); err != nil {
		return failed("Error: " + err.Error())
	}
	return ok(fmt.Sprintf("Replaced %d occurrence(s) of the string in %s", n, c.Path))
}

func (e TextEditor) insert(c InsertCommand) EditorResult {
	content, res, found := e.editable(c.Path)
	if !found {
		return res
	}

	lines := strings.Split(content, "\n")
	if c.Line < 0 || c.Line > len(lines) {
		return failed(fmt.Sprintf("Error: Invalid line number: %d", c.Line))
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:c.Line]...)
	updated = append(updated, c.NewStr)
	updated = append(updated, lines[c.Line:]...)

	if err := e.fs.WriteFile(c.Path, strings.Join(updated, "\n")); err != nil {
		return failed("Error: " + err.Error())
	}
	return ok(fmt.Sprintf("Text inserted at line %d in %s", c.Line, c.Path))
}

// editable reads the file at path for an edit. When the file cannot be edited it returns the
// result to report and false.
func (e TextEditor) editable(path string) (string, EditorResult, bool) {
	entry, err := e.fs.Stat(path)
	switch {
	case errors.Is(err, vfs.ErrInvalidPath):
		return "", failed("Error: Invalid path: " + path), false
	case err != nil:
		return "", failed("Error: File not found: " + path), false
	case entry.IsDir():
		return "", failed("Error: Cannot edit a directory: " + path), false
	}

	content, err := e.fs.ReadFile(path)
	if err != nil {
		return "", failed("Error: " + err.Error()), false
	}
	return content, EditorResult{}, true
}

func ok(text string) EditorResult     { return EditorResult{Text: text} }
func failed(text string) EditorResult { return EditorResult{Text: text, Failed: true} }
