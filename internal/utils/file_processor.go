package utils

import (
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileProcessor finds and parses the Go files of package directories
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a file processor over reader
func NewFileProcessor(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter accepts .go files that are not tests
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}
}

// DefaultDirectoryFilter skips directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// ScanDirectoriesWithGoFiles returns rootDir and every directory below it
// holding Go files, in lexical order
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDir string) ([]string, error) {
	var packageDirs []string
	if err := fp.scanDirectoryRecursive(rootDir, make(map[string]bool), &packageDirs); err != nil {
		return nil, err
	}
	sort.Strings(packageDirs)
	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectoryRecursive(dir string, visited map[string]bool, packageDirs *[]string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return WrapProcessError(fmt.Sprintf("path resolution %s", dir), err)
	}
	if visited[absDir] {
		return nil
	}
	visited[absDir] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return WrapProcessError(fmt.Sprintf("directory read %s", dir), err)
	}

	fileFilter := DefaultGoFileFilter()
	directoryFilter := DefaultDirectoryFilter()
	hasGoFiles := false
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if !directoryFilter(entryPath, entry) {
				continue
			}
			if err := fp.scanDirectoryRecursive(entryPath, visited, packageDirs); err != nil {
				return err
			}
			continue
		}
		if fileFilter(entryPath, entry) {
			hasGoFiles = true
		}
	}

	if hasGoFiles {
		*packageDirs = append(*packageDirs, dir)
	}
	return nil
}

// ParseDirectoryFiles parses the non-test Go files of one directory in
// file name order. All files must declare the same package.
func (fp *FileProcessor) ParseDirectoryFiles(dirPath string) ([]*ast.File, string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, "", WrapProcessError(fmt.Sprintf("directory read %s", dirPath), err)
	}

	var files []*ast.File
	var packageName string
	fileFilter := DefaultGoFileFilter()

	for _, entry := range entries {
		filePath := filepath.Join(dirPath, entry.Name())
		if !fileFilter(filePath, entry) {
			continue
		}

		file, err := fp.fileReader.ParseGoFile(filePath)
		if err != nil {
			return nil, "", err
		}

		if packageName == "" {
			packageName = file.Name.Name
		} else if file.Name.Name != packageName {
			return nil, "", fmt.Errorf("multiple packages found in directory %s: %s and %s", dirPath, packageName, file.Name.Name)
		}
		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, "", fmt.Errorf("no Go files found in directory %s", dirPath)
	}
	return files, packageName, nil
}
