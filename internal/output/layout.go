// Package output lays out and writes the per-figure files of a run.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DateLayout is the date format used in directory and file names.
const DateLayout = "2006-01-02"

// Kind names one output file of a figure.
type Kind string

const (
	KindAzEl    Kind = "azel"
	KindPolar   Kind = "polar"
	KindLST     Kind = "LST"
	KindData    Kind = "data"
	KindSummary Kind = "summary"
)

// Ext returns the file extension for k, including the dot.
func (k Kind) Ext() string {
	switch k {
	case KindData:
		return ".csv"
	case KindSummary:
		return ".yaml"
	default:
		return ".png"
	}
}

// Layout manages the output tree
// <Root>/<date>/<antenna>/uptimeplot_<kind>_<date>_<antenna><ext>.
type Layout struct {
	Root string
}

// NewLayout creates a Layout rooted at root.
func NewLayout(root string) Layout {
	if root == "" {
		root = "."
	}
	return Layout{Root: root}
}

// Dir returns the directory holding the files of one (antenna, date) pair.
func (l Layout) Dir(date time.Time, antenna string) string {
	return filepath.Join(l.Root, date.Format(DateLayout), antenna)
}

// Path returns the file path of kind for one (antenna, date) pair.
func (l Layout) Path(kind Kind, date time.Time, antenna string) string {
	d := date.Format(DateLayout)
	name := fmt.Sprintf("uptimeplot_%s_%s_%s%s", kind, d, antenna, kind.Ext())
	return filepath.Join(l.Root, d, antenna, name)
}

// WriteFile creates path's directory if needed and writes through a
// temporary file that is renamed into place once write succeeds. A failed
// write leaves no file at path.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".uptimeplot-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
