package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/routeplan/internal/utils"
)

// DirectoryScanner turns command line paths into directories to load
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// ScanDirectories resolves paths to absolute directories. Go-style patterns
// like "./..." name their base directory; loading always descends into
// subdirectories.
func (s *DirectoryScanner) ScanDirectories(paths []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	for _, path := range paths {
		base := path
		if strings.HasSuffix(base, "/...") || base == "..." {
			base = strings.TrimSuffix(strings.TrimSuffix(base, "..."), "/")
			if base == "" {
				base = "."
			}
		}

		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, utils.WrapProcessError(fmt.Sprintf("path resolution %s", base), err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, utils.WrapProcessError(fmt.Sprintf("path %s", path), err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}

		if !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}
	return dirs, nil
}
