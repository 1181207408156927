package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := t.TempDir()
	api := filepath.Join(root, "api")
	require.NoError(t, os.MkdirAll(api, 0o755))
	file := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main"), 0o644))

	tests := []struct {
		name    string
		paths   []string
		want    []string
		wantErr string
	}{
		{name: "plain directory", paths: []string{api}, want: []string{api}},
		{name: "recursive pattern", paths: []string{root + "/..."}, want: []string{root}},
		{name: "deduplicated", paths: []string{root, root + "/...", api}, want: []string{root, api}},
		{name: "missing", paths: []string{filepath.Join(root, "nope")}, wantErr: "nope"},
		{name: "file", paths: []string{file}, wantErr: "not a directory"},
	}

	scanner := NewDirectoryScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirs, err := scanner.ScanDirectories(tt.paths)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dirs)
		})
	}
}

func TestDirectoryScanner_RelativePattern(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	dirs, err := NewDirectoryScanner().ScanDirectories([]string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{wd}, dirs)
}
