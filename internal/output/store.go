package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orgdump/internal/failure"
)

const (
	ReposFileName    = "orgrepos.json"
	issuesFileSuffix = ".issues.json"
)

// IssuesFileName returns the file name holding the issues of repo.
func IssuesFileName(repo string) string {
	return repo + issuesFileSuffix
}

// DirStore writes pretty-printed JSON documents into one organization's
// output directory. Existing files are overwritten; nothing is ever removed.
type DirStore struct {
	dir string
}

// NewDirStore creates <root>/<org> (and any missing parents) and returns a
// store rooted there.
func NewDirStore(root, org string) (*DirStore, error) {
	if err := validateName(org); err != nil {
		return nil, failure.New(failure.DirectoryCreateFailure, "create output directory", err)
	}

	dir, err := filepath.Abs(filepath.Join(root, org))
	if err != nil {
		return nil, failure.New(failure.DirectoryCreateFailure, "create output directory", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, failure.New(failure.DirectoryCreateFailure, fmt.Sprintf("create output directory %s", dir), err)
	}

	return &DirStore{dir: dir}, nil
}

// Dir returns the absolute output directory.
func (s *DirStore) Dir() string {
	return s.dir
}

// WriteJSON encodes v with two-space indentation and writes it to name inside
// the output directory.
func (s *DirStore) WriteJSON(name string, v any) error {
	if err := validateName(name); err != nil {
		return failure.New(failure.FileWriteFailure, "write output file", err)
	}

	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return failure.New(failure.SerializationFailure, fmt.Sprintf("serialize %s", name), err)
	}
	buf = append(buf, '\n')

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return failure.New(failure.FileWriteFailure, fmt.Sprintf("write %s", name), err)
	}
	return nil
}

// validateName rejects names that would resolve outside the output directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
