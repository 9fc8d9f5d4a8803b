// Package vfs implements the in-memory filesystem a generation session works in. Nothing ever
// touches the disk: a workspace lives as long as its FileSystem value and can be handed around as a
// Snapshot.
package vfs
