// Package filex manages local files written by downloads.
package filex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/recordfiles/internal/common"
)

// EnsureSubdDir creates dirName under the working directory and returns its
// absolute path. An absolute dirName is used as is.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// CreateOutputFile creates (or truncates) name inside dirName, creating the
// directory first. The caller closes the file.
func CreateOutputFile(dirName, name string) (*os.File, error) {
	base := filepath.Base(name)
	if name == "" || base != name || base == "." || base == ".." {
		return nil, fmt.Errorf("%w: output file %q", common.ErrInvalidName, name)
	}

	dir, err := EnsureSubdDir(dirName)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, base), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", base, err)
	}
	return f, nil
}
