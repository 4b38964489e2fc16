package model

import (
	"path/filepath"
)

// FileDescriptor describes one discovered source file.
// It is created once by discovery and shared by the global and main passes of the same file.
type FileDescriptor struct {
	// SourcePath is the path of the source file.
	SourcePath string
	// DestDir is the destination directory.
	DestDir string
	// DestName is the destination file name.
	DestName string
	// CopyOnly marks files that are copied without preprocessing.
	CopyOnly bool
	// Excluded is set when a deferred exclusion evaluated true during the global pass.
	Excluded bool
}

// NewFileDescriptor creates a FileDescriptor, splitting destination into directory and name.
func NewFileDescriptor(source, destination string, copyOnly bool) *FileDescriptor {
	dir, name := filepath.Split(destination)
	if dir == "" {
		dir = "."
	}
	return &FileDescriptor{
		SourcePath: source,
		DestDir:    filepath.Clean(dir),
		DestName:   name,
		CopyOnly:   copyOnly,
	}
}

// DestinationPath returns DestDir joined with DestName.
func (f *FileDescriptor) DestinationPath() string {
	return filepath.Join(f.DestDir, f.DestName)
}

// String returns the source path.
func (f *FileDescriptor) String() string {
	return f.SourcePath
}
