package catalog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// FileSource reads one code per line. Lines are trimmed and blank lines skipped.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Codes reads the file.
func (s *FileSource) Codes(_ context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening country codes: %w", err)
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading country codes: %w", err)
	}
	return codes, nil
}
