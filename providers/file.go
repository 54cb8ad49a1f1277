package providers

import (
	"context"
	"os"

	"github.com/mitchellh/go-homedir"
)

type fileProvider struct{}

func newFileProvider() *fileProvider { return &fileProvider{} }

// Get reads the file at path, expanding a leading tilde.
func (f *fileProvider) Get(_ context.Context, path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

// Put writes the file at path, expanding a leading tilde.
func (f *fileProvider) Put(_ context.Context, path string, data []byte) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o644)
}
