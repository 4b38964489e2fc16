package preprocessor

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/tacogips/cpre/internal/logger"
)

// Writer writes destination files.
type Writer interface {
	// WriteFile writes content to a file with the specified permissions.
	WriteFile(path string, content []byte, mode os.FileMode) error

	// CreateDir creates a directory and any necessary parent directories.
	CreateDir(path string) error
}

// FileWriter implements Writer for filesystem operations.
type FileWriter struct{}

// NewFileWriter creates a new FileWriter.
func NewFileWriter() Writer {
	return &FileWriter{}
}

// WriteFile writes content atomically using a temporary file and rename.
// Parent directories are created on demand.
func (w *FileWriter) WriteFile(path string, content []byte, mode os.FileMode) error {
	logger.Debug("[emit] writing %s (%d bytes, mode %o)", path, len(content), mode)

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := w.CreateDir(dir); err != nil {
			return err
		}
	}

	if mode&0600 == 0 {
		mode |= 0600
	}

	tempFile := path + ".tmp"
	f, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return wrapProcessError(KindIO, err, "cannot create %s", tempFile)
	}

	_, err = f.Write(content)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(tempFile)
		return wrapProcessError(KindIO, err, "cannot write %s", path)
	}
	if closeErr != nil {
		_ = os.Remove(tempFile)
		return wrapProcessError(KindIO, closeErr, "cannot close %s", path)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return wrapProcessError(KindIO, err, "cannot rename %s", tempFile)
	}
	return nil
}

// CreateDir creates a directory with 0755 permissions.
func (w *FileWriter) CreateDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return wrapProcessError(KindIO, err, "cannot create directory %s", path)
	}
	return nil
}

// sameContent reports whether the file at path holds exactly data.
// Sizes are compared before any bytes are read.
func sameContent(path string, data []byte) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Equal(existing, data)
}

// copyAttributes copies permissions and modification time from src to dst.
// Failures are traced and otherwise ignored.
func copyAttributes(src, dst string) {
	info, err := os.Stat(src)
	if err != nil {
		logger.Debug("[emit] cannot stat %s for attributes: %v", src, err)
		return
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		logger.Debug("[emit] cannot set mode of %s: %v", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		logger.Debug("[emit] cannot set times of %s: %v", dst, err)
	}
}

// CopyFile copies src to dst, skipping the write when dst already holds the same bytes
// and stable is set. It reports whether dst was written.
func CopyFile(w Writer, src, dst string, stable, preserveAttributes bool) (bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return false, wrapProcessError(KindIO, err, "cannot read %s", src)
	}
	if stable && sameContent(dst, data) {
		logger.Debug("[emit] %s unchanged", dst)
		return false, nil
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(src); err == nil {
		mode = info.Mode().Perm()
	}
	if err := w.WriteFile(dst, data, mode); err != nil {
		return false, err
	}
	if preserveAttributes {
		copyAttributes(src, dst)
	}
	return true, nil
}
