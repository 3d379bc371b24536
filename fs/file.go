// Package fs writes exported records to disk.
package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File is an output file that only appears at its final path on Commit.
// Writes go to a temporary file in the same directory.
type File struct {
	path string
	tmp  *os.File
}

// Create opens a temporary file next to path.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &File{path: path, tmp: tmp}, nil
}

// Path returns the final path of the file.
func (f *File) Path() string {
	return f.path
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Commit replaces the file at the final path with what was written.
func (f *File) Commit() error {
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(f.tmp.Name())
		return err
	}
	if err := os.Chmod(f.tmp.Name(), 0644); err != nil {
		_ = os.Remove(f.tmp.Name())
		return err
	}
	return os.Rename(f.tmp.Name(), f.path)
}

// Abort discards what was written. The final path is left untouched.
func (f *File) Abort() error {
	_ = f.tmp.Close()
	return os.Remove(f.tmp.Name())
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName derives an output file name from the scraped URL.
// Example: https://shop.example/bikes/road?page=2 → shop.example_bikes_road.csv
func FileName(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	name := u.Hostname()
	if p := strings.Trim(u.Path, "/"); p != "" {
		name += "_" + p
	}
	name = strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "scraping_results"
	}
	return name + "." + ext, nil
}

// OutputPath resolves where to write an export. When target is an existing
// directory the file name is derived from rawURL.
func OutputPath(target, rawURL, ext string) (string, error) {
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return target, nil
	}
	name, err := FileName(rawURL, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(target, name), nil
}
