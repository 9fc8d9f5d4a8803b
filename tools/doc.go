// Package tools implements the str_replace_editor and file_manager tools over a vfs.FileSystem.
package tools
