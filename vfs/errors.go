package vfs

import "errors"

var (
	// ErrInvalidPath is returned when a path cannot be normalized.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotFound is returned when no node exists at a path.
	ErrNotFound = errors.New("no such file or directory")
	// ErrAlreadyExists is returned when a node already occupies a path that must be free.
	ErrAlreadyExists = errors.New("file already exists")
	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("is a directory")
	// ErrNotDirectory is returned when a directory operation targets a file.
	ErrNotDirectory = errors.New("not a directory")
	// ErrPathIsFile is returned when a file sits where a directory is needed.
	ErrPathIsFile = errors.New("path is a file")
	// ErrRootImmutable is returned when the root directory would be renamed or deleted.
	ErrRootImmutable = errors.New("root directory cannot be modified")

	// ErrRenameFailed wraps every error returned by FileSystem.Rename.
	ErrRenameFailed = errors.New("rename failed")
	// ErrDeleteFailed wraps every error returned by FileSystem.Delete.
	ErrDeleteFailed = errors.New("delete failed")
)
