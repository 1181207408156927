package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrors(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		wrap func(string, error) error
		want string
	}{
		{"parse", WrapParseError, "failed to parse handlers.go: boom"},
		{"load", WrapLoadError, "failed to load handlers.go: boom"},
		{"process", WrapProcessError, "failed to process handlers.go: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap("handlers.go", base)
			assert.EqualError(t, err, tt.want)
			assert.ErrorIs(t, err, base)
		})
	}
}
