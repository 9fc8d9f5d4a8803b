package tools

import (
	"encoding/json"
)

// DisplayMessage returns a short label describing a tool call, such as "Creating /App.jsx".
// Unknown tools, unknown commands and unreadable input fall back to the tool name.
func DisplayMessage(toolName string, input json.RawMessage) string {
	var args struct {
		Command string `json:"command"`
		Path    string `json:"path"`
		NewPath string `json:"new_path"`
	}
	if err := json.Unmarshal(input, &args); err != nil || args.Path == "" {
		return toolName
	}

	switch toolName {
	case EditorToolName:
		switch args.Command {
		case CommandCreate:
			return "Creating " + args.Path
		case CommandStrReplace, CommandInsert:
			return "Editing " + args.Path
		case CommandView:
			return "Viewing " + args.Path
		}
	case ManagerToolName:
		switch args.Command {
		case CommandRename:
			if args.NewPath != "" {
				return "Renaming " + args.Path + " → " + args.NewPath
			}
			return "Renaming " + args.Path
		case CommandDelete:
			return "Deleting " + args.Path
		}
	}
	return toolName
}
