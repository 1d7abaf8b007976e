package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OpenROM opens the ROM image at relPath and returns the name it is shown
// under. The caller owns the returned file.
func OpenROM(relPath string) (name string, file *os.File, err error) {
	fullPath, _, err := GetPathInfo(relPath)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", fullPath)
	}

	file, err = os.Open(fullPath)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(fullPath), file, nil
}
