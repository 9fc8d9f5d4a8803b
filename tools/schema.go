package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// EditorArgs is an argument struct for the str_replace_editor tool.
type EditorArgs struct {
	Command    string  `json:"command"`
	Path       string  `json:"path"`
	FileText   *string `json:"file_text,omitempty"`
	ViewRange  []int   `json:"view_range,omitempty"`
	OldStr     *string `json:"old_str,omitempty"`
	NewStr     *string `json:"new_str,omitempty"`
	InsertLine *int    `json:"insert_line,omitempty"`
}

// ManagerArgs is an argument struct for the file_manager tool.
type ManagerArgs struct {
	Command string  `json:"command"`
	Path    string  `json:"path"`
	NewPath *string `json:"new_path,omitempty"`
}

// command is not an enum: unknown commands must reach the tools, which answer them in their own
// result format.
const editorSchemaJSON = `{
  "type": "object",
  "properties": {
    "command": {
      "type": "string",
      "description": "The command to run: view, create, str_replace, insert or undo_edit"
    },
    "path": {
      "type": "string",
      "description": "Absolute path to the file or directory"
    },
    "file_text": {
      "type": "string",
      "description": "Content of the file for the create command"
    },
    "view_range": {
      "type": "array",
      "items": { "type": "integer" },
      "description": "Inclusive 1-indexed [start, end] line range for the view command; end -1 reads to the end"
    },
    "old_str": {
      "type": "string",
      "description": "Text to replace for the str_replace command"
    },
    "new_str": {
      "type": "string",
      "description": "Replacement text for str_replace, or text to insert for insert"
    },
    "insert_line": {
      "type": "integer",
      "description": "Line after which new_str is inserted; 0 inserts at the beginning"
    }
  },
  "required": ["command", "path"]
}`

const managerSchemaJSON = `{
  "type": "object",
  "properties": {
    "command": {
      "type": "string",
      "description": "The command to run: rename or delete"
    },
    "path": {
      "type": "string",
      "description": "Absolute path of the file or directory"
    },
    "new_path": {
      "type": "string",
      "description": "Destination path for the rename command"
    }
  },
  "required": ["command", "path"]
}`

var (
	editorSchema  = jsonschema.Must(editorSchemaJSON)
	managerSchema = jsonschema.Must(managerSchemaJSON)
)

// decodeArgs validates raw against schema and decodes it into v.
func decodeArgs(ctx context.Context, schema *jsonschema.Schema, raw json.RawMessage, v any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse arguments: %w", err)
	}

	vs := schema.Validate(ctx, doc)
	if vs.Errs != nil && len(*vs.Errs) > 0 {
		var errStr []string
		for _, err := range *vs.Errs {
			if err.PropertyPath != "" && err.PropertyPath != "/" {
				errStr = append(errStr, fmt.Sprintf("%s: %s", err.PropertyPath, err.Message))
				continue
			}
			errStr = append(errStr, err.Message)
		}
		return fmt.Errorf("%s", strings.Join(errStr, ", "))
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}
