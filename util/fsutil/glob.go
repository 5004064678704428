package fsutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-zglob"
)

// Hostfile describes a file found by Glob.
type Hostfile struct {
	// The path as matched, relative to the working directory when the
	// pattern is relative.
	Rel string
	// The absolute path of the file on the host.
	Abs string
}

// Glob returns the regular files matching pattern, sorted by path. Patterns
// may use "**" to match any number of directories.
// This method uses the implementation in github.com/mattn/go-zglob.
func Glob(pattern string) ([]Hostfile, error) {
	matches, err := zglob.Glob(pattern)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var files []Hostfile
	for _, path := range matches {
		finfo, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if finfo.IsDir() {
			continue
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		files = append(files, Hostfile{Rel: path, Abs: absPath})
	}
	return files, nil
}
