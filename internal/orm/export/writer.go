package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExtension is appended to exported file names
const DefaultExtension = ".mapping"

// ErrFileExists is returned when the target file exists and overwriting is off
var ErrFileExists = errors.New("program file already exists")

// Writer stores rendered programs under Dir, one file per class
type Writer struct {
	Fs        afero.Fs
	Dir       string
	Extension string
	Overwrite bool
}

// NewWriter creates a writer on the OS filesystem
func NewWriter(dir string) *Writer {
	return &Writer{
		Fs:        afero.NewOsFs(),
		Dir:       dir,
		Extension: DefaultExtension,
	}
}

// FileName returns the file name for className: namespace separators become
// dots and the extension is appended.
func (w *Writer) FileName(className string) string {
	ext := w.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	name := strings.NewReplacer(`\`, ".", "/", ".").Replace(className)
	return name + ext
}

// Path returns the full path of the program file for className
func (w *Writer) Path(className string) string {
	return filepath.Join(w.Dir, w.FileName(className))
}

// Exists reports whether a program file for className is present
func (w *Writer) Exists(className string) bool {
	ok, err := afero.Exists(w.Fs, w.Path(className))
	return err == nil && ok
}

// Write stores program as the file for className and returns its path.
// The content goes to a temporary file that is renamed into place.
func (w *Writer) Write(className, program string) (string, error) {
	path := w.Path(className)

	if !w.Overwrite && w.Exists(className) {
		return "", fmt.Errorf("%s: %w", path, ErrFileExists)
	}

	if err := w.Fs.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(w.Fs, tmpPath, []byte(program), 0644); err != nil {
		w.Fs.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temporary program file: %w", err)
	}

	if err := w.Fs.Rename(tmpPath, path); err != nil {
		w.Fs.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename program file: %w", err)
	}

	return path, nil
}

// Read returns the stored program for className
func (w *Writer) Read(className string) (string, error) {
	data, err := afero.ReadFile(w.Fs, w.Path(className))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
