package svn

import (
	"bufio"
	"os"
	"path/filepath"
)

// WorkingCopy answers questions about the checked-out tree: whether a
// logged path still exists, whether it is a directory, and how many lines a
// file currently has. Implements resolver.ExistenceOracle and
// reconcile.LineCounter.
type WorkingCopy struct {
	root string
}

// NewWorkingCopy creates an oracle rooted at dir.
func NewWorkingCopy(dir string) *WorkingCopy {
	return &WorkingCopy{root: dir}
}

// Exists reports whether the relative path exists in the working copy.
func (wc *WorkingCopy) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(wc.root, filepath.FromSlash(path)))
	return err == nil
}

// IsDirectory reports whether the relative path is a directory.
func (wc *WorkingCopy) IsDirectory(path string) bool {
	info, err := os.Stat(filepath.Join(wc.root, filepath.FromSlash(path)))
	return err == nil && info.IsDir()
}

// CountLines counts the lines of the working-copy file at the relative
// path.
func (wc *WorkingCopy) CountLines(path string) (int, error) {
	f, err := os.Open(filepath.Join(wc.root, filepath.FromSlash(path)))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
