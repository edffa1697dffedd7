// Package source defines the StorySource collaborator boundary.
//
// Story content generation lives outside this repository; the pipeline
// only consumes an already-formed collection. StaticSource replays a fixed
// collection for demos and tests, and FileSource loads one from JSON.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vantage-intel/vantage/internal/model"
)

// StorySource supplies the story collection for a request.
type StorySource interface {
	Stories(ctx context.Context) ([]model.Story, error)
}

// StaticSource serves a fixed, in-memory collection.
type StaticSource struct {
	stories []model.Story
}

// NewStatic creates a StaticSource. The slice is copied; later mutation of
// the caller's slice does not leak into served results.
func NewStatic(stories []model.Story) *StaticSource {
	return &StaticSource{stories: append([]model.Story(nil), stories...)}
}

// Stories returns the fixed collection.
func (s *StaticSource) Stories(ctx context.Context) ([]model.Story, error) {
	return append([]model.Story(nil), s.stories...), nil
}

// FileSource reads the story collection from a JSON file on every call,
// so a demo can edit the file without restarting the server.
type FileSource struct {
	path string
}

// NewFile creates a FileSource for the given path.
func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

// Stories loads and decodes the collection.
func (s *FileSource) Stories(ctx context.Context) ([]model.Story, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", s.path, err)
	}
	var stories []model.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", s.path, err)
	}
	return stories, nil
}
