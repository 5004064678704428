package fsutil

import (
	"os"
)

// Exists returns whether the given file or directory exists or not.
func Exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

// EnsureDir ensures a directory exists.
func EnsureDir(p string) error {
	e, err := Exists(p)
	if err != nil {
		return err
	}
	if !e {
		return os.MkdirAll(p, 0755)
	}
	return nil
}
