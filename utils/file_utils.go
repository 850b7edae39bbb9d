package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const (
	// Base directory for stored registration documents
	uploadBaseDir = "uploads"
)

var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// CleanFilename removes path components and any potentially dangerous
// characters from an uploaded filename.
func CleanFilename(filename string) string {
	filename = filepath.Base(filename)
	return filenameCleaner.ReplaceAllString(filename, "")
}

// InitializeStorage creates the directories registration documents land in.
func InitializeStorage() error {
	dirs := []string{
		uploadBaseDir,
		filepath.Join(uploadBaseDir, "certificates"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

// SaveDocument writes an uploaded document under uploads/<subDir> with a
// unique filename and returns the stored relative path.
func SaveDocument(data []byte, filename, subDir string) (string, error) {
	cleanName := CleanFilename(filename)
	if cleanName == "" {
		return "", fmt.Errorf("invalid filename")
	}

	dir := filepath.Join(uploadBaseDir, subDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	unique := fmt.Sprintf("%d_%s", time.Now().UnixNano(), cleanName)
	fullPath := filepath.Join(dir, unique)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath, nil
}
