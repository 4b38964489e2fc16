// Package discover walks source directories and classifies files for the preprocessor.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/model"
)

// Options controls which files are collected and where they are written.
type Options struct {
	// Sources are the source root directories, walked in order.
	Sources []string
	// Destination is the destination root; each file keeps its path relative to its source root.
	Destination string
	// ProcessExtensions lists extensions that are preprocessed. Other files are copied.
	ProcessExtensions []string
	// ExcludedExtensions lists extensions that are skipped entirely.
	ExcludedExtensions []string
	// IgnorePatterns are glob patterns matched against paths relative to a source root.
	IgnorePatterns []string
}

// Result is the outcome of a discovery run, in walk order.
type Result struct {
	// Process holds the files to preprocess.
	Process []*model.FileDescriptor
	// CopyOnly holds the files copied verbatim.
	CopyOnly []*model.FileDescriptor
	// Skipped counts files dropped by ignore patterns or excluded extensions.
	Skipped int
}

// Files returns every collected descriptor, processable files first.
func (r *Result) Files() []*model.FileDescriptor {
	files := make([]*model.FileDescriptor, 0, len(r.Process)+len(r.CopyOnly))
	files = append(files, r.Process...)
	return append(files, r.CopyOnly...)
}

// Discover walks every source root and classifies the files it finds.
func Discover(ctx context.Context, opts Options) (*Result, error) {
	logger.DebugSection("Discovering source files")
	logger.DebugValue("sources", opts.Sources)
	logger.DebugValue("destination", opts.Destination)

	process := extensionSet(opts.ProcessExtensions)
	excluded := extensionSet(opts.ExcludedExtensions)

	destRoot, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, newDiscoverError(WalkFailed, opts.Destination, "cannot resolve destination", err)
	}

	result := &Result{}
	seen := make(map[string]string)

	for _, source := range opts.Sources {
		root, err := filepath.Abs(source)
		if err != nil {
			return nil, newDiscoverError(WalkFailed, source, "cannot resolve source", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, newDiscoverError(SourceNotFound, source, "source directory does not exist", nil)
			}
			return nil, newDiscoverError(WalkFailed, source, "cannot stat source", err)
		}
		if !info.IsDir() {
			return nil, newDiscoverError(SourceNotDirectory, source, "source must be a directory", nil)
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if os.IsNotExist(err) {
					logger.Debug("[discover] Skipping broken symlink: %s", path)
					return nil
				}
				return err
			}

			if path == root {
				return nil
			}
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path == destRoot {
					logger.Debug("[discover] Skipping destination directory inside source: %s", relPath)
					return filepath.SkipDir
				}
				if ShouldIgnore(relPath, opts.IgnorePatterns) {
					return filepath.SkipDir
				}
				return nil
			}

			if info.Mode()&os.ModeSymlink != 0 {
				target, statErr := os.Stat(path)
				if statErr != nil || !target.Mode().IsRegular() {
					logger.Debug("[discover] Skipping symlink: %s", relPath)
					return nil
				}
			} else if !info.Mode().IsRegular() {
				logger.Debug("[discover] Skipping non-regular file: %s", relPath)
				return nil
			}

			if ShouldIgnore(relPath, opts.IgnorePatterns) {
				result.Skipped++
				return nil
			}
			ext := Extension(info.Name())
			if excluded[ext] {
				logger.Debug("[discover] Skipping excluded extension: %s", relPath)
				result.Skipped++
				return nil
			}

			dest := filepath.Join(destRoot, relPath)
			if prev, ok := seen[dest]; ok {
				return newDiscoverError(DuplicateDestination, path,
					"destination "+dest+" is also produced by "+prev, nil)
			}
			seen[dest] = path

			fd := model.NewFileDescriptor(path, dest, !process[ext])
			if fd.CopyOnly {
				result.CopyOnly = append(result.CopyOnly, fd)
			} else {
				result.Process = append(result.Process, fd)
			}
			return nil
		})
		if err != nil {
			if de, ok := err.(*DiscoverError); ok {
				return nil, de
			}
			if err == ctx.Err() {
				return nil, err
			}
			return nil, newDiscoverError(WalkFailed, source, "failed to walk source", err)
		}
	}

	logger.Debug("[discover] Found %d files to process, %d to copy, %d skipped",
		len(result.Process), len(result.CopyOnly), result.Skipped)
	return result, nil
}

// IsUnder reports whether path is inside dir or equal to it.
func IsUnder(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (!filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
