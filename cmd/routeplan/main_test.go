package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersFile = `package api

//routeplan::controller -Prefix=/orders
type Orders struct{}

//routeplan::route GET /{id:int}
func (o *Orders) Get(id int) (string, error) { return "", nil }

//routeplan::route DELETE /{id:int}
func (o *Orders) Remove(id int) error { return nil }
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(root)
	return root
}

func TestRun_Arguments(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		code     int
		contains string
	}{
		{name: "help", args: []string{"-help"}, code: 0, contains: "Usage: routeplan"},
		{name: "no paths", args: nil, code: 1, contains: "At least one directory path is required"},
		{name: "unknown flag", args: []string{"-nope", "."}, code: 2, contains: "flag provided but not defined"},
		{name: "missing directory", args: []string{"./missing"}, code: 1, contains: "ERROR: Compilation Failed"},
		{name: "bad format", args: []string{"-format", "xml", "."}, code: 1, contains: "Config Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeProject(t, map[string]string{"go.mod": "module example.com/shop\n"})
			var stdout, stderr bytes.Buffer

			code := run(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr.String(), tt.contains)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_WritesTableToStdout(t *testing.T) {
	writeProject(t, map[string]string{
		"go.mod":        "module example.com/shop\n",
		"api/orders.go": ordersFile,
	})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-targets", "echo,gin", "./..."}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var table struct {
		Endpoints []struct {
			Method string
			Route  string
		}
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &table))
	require.Len(t, table.Endpoints, 2)
	assert.Contains(t, stderr.String(), "Compilation Complete")
}

func TestRun_OutputFileAndQuiet(t *testing.T) {
	root := writeProject(t, map[string]string{
		"go.mod":        "module example.com/shop\n",
		"api/orders.go": ordersFile,
	})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-quiet", "-format", "yaml", "-o", "routes.yaml", "./api"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
	data, err := os.ReadFile(filepath.Join(root, "routes.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/orders/{id:int}")
}

func TestRun_DiagnosticsExitNonZero(t *testing.T) {
	writeProject(t, map[string]string{
		"go.mod": "module example.com/shop\n",
		"api/orders.go": ordersFile + `
//routeplan::route GET /{id:int}
func (o *Orders) Again(id int) error { return nil }
`,
	})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"./api"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "EOE015")
	assert.NotEmpty(t, stdout.String())
}

func TestRun_BrokenPackageStillWritesTable(t *testing.T) {
	writeProject(t, map[string]string{
		"go.mod":        "module example.com/shop\n",
		"api/orders.go": ordersFile,
		"bad/bad.go":    "package bad\nfunc (\n",
	})
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"./..."}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "1 packages not loaded")
	var table struct {
		Endpoints []struct{ Route string }
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &table))
	assert.Len(t, table.Endpoints, 2)
}

func TestRun_HelpListsConstraints(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Route Constraints:")
	assert.Contains(t, stderr.String(), "int")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"echo", "gin"}, splitList(" echo, ,gin "))
}
