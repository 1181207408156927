package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFilters(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"main.go":      "package main",
		"main_test.go": "package main",
		"README.md":    "# README",
	} {
		writeFile(t, filepath.Join(dir, name), content)
	}
	for _, sub := range []string{"vendor", ".git", "_examples", "api"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var goFiles, dirs []string
	fileFilter, dirFilter := DefaultGoFileFilter(), DefaultDirectoryFilter()
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if fileFilter(path, e) {
			goFiles = append(goFiles, e.Name())
		}
		if e.IsDir() && dirFilter(path, e) {
			dirs = append(dirs, e.Name())
		}
	}
	assert.Equal(t, []string{"main.go"}, goFiles)
	assert.Equal(t, []string{"api"}, dirs)
}

func TestScanDirectoriesWithGoFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "api", "users.go"), "package api")
	writeFile(t, filepath.Join(root, "api", "users_test.go"), "package api")
	writeFile(t, filepath.Join(root, "docs", "index.md"), "# docs")
	writeFile(t, filepath.Join(root, "vendor", "lib", "lib.go"), "package lib")
	writeFile(t, filepath.Join(root, "only_tests", "x_test.go"), "package x")

	dirs, err := NewFileProcessor(NewFileReader(nil)).ScanDirectoriesWithGoFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "api")}, dirs)
}

func TestParseDirectoryFiles(t *testing.T) {
	t.Run("single package", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.go"), "package api\n")
		writeFile(t, filepath.Join(dir, "a.go"), "package api\n")

		files, name, err := NewFileProcessor(NewFileReader(nil)).ParseDirectoryFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, "api", name)
		assert.Len(t, files, 2)
	})

	t.Run("mixed packages", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.go"), "package api\n")
		writeFile(t, filepath.Join(dir, "b.go"), "package other\n")

		_, _, err := NewFileProcessor(NewFileReader(nil)).ParseDirectoryFiles(dir)
		assert.ErrorContains(t, err, "multiple packages")
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := NewFileProcessor(NewFileReader(nil)).ParseDirectoryFiles(t.TempDir())
		assert.ErrorContains(t, err, "no Go files")
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.go"), "package api\nfunc (\n")

		_, _, err := NewFileProcessor(NewFileReader(nil)).ParseDirectoryFiles(dir)
		assert.ErrorContains(t, err, "failed to parse a.go")
	})
}
