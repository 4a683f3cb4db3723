package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github-projects-mcp/internal/errors"
)

// FixtureSource serves repository pull request pages from JSON files on disk.
// Each file holds one connection ({"nodes": [...], "pageInfo": {...}}) and
// the first page is page-001.json. End cursors name the next file's stem.
//
// Pages for a specific repository are looked up in <Dir>/<owner>/<name> first,
// then in Dir itself.
type FixtureSource struct {
	Dir string
}

// FirstPageFile is the file name of the first fixture page.
const FirstPageFile = "page-001.json"

// PageFileName returns the fixture file name for the 1-based page n.
func PageFileName(n int) string {
	return fmt.Sprintf("page-%03d.json", n)
}

// RepoPullRequestsPage implements RepoPullRequestSource.
func (s FixtureSource) RepoPullRequestsPage(ctx context.Context, owner, name, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, apperrors.NewTransportError("fixture read cancelled", err)
	}

	dir := s.Dir
	if repoDir := filepath.Join(s.Dir, owner, name); isDir(repoDir) {
		dir = repoDir
	}

	file := FirstPageFile
	if cursor != "" {
		file = filepath.Base(cursor) + ".json"
	}

	data, err := os.ReadFile(filepath.Join(dir, file))
	if errors.Is(err, os.ErrNotExist) && cursor == "" {
		return Page{}, apperrors.NewNotFoundError(fmt.Sprintf("fixtures for repository %s/%s", owner, name))
	}
	if err != nil {
		return Page{}, apperrors.NewTransportError("failed to read fixture page "+file, err)
	}

	var conn ConnectionDTO
	if err := json.Unmarshal(data, &conn); err != nil {
		return Page{}, apperrors.NewUpstreamProtocolError("malformed fixture page "+file, err)
	}
	return conn.ToPage(), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
