package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- undo %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration scaffolds <dir>/<version>_<slug>.sql. The version is the
// current UTC timestamp, bumped past the newest existing file so two
// migrations created in the same second still sort.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	latest, err := latestVersion(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	version := time.Now().UTC()
	if latest != nil && !version.After(*latest) {
		version = latest.Add(time.Second)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), slug))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, sqlTemplate, slug); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func slugify(name string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

func latestVersion(fsys fs.FS) (*time.Time, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var latest int64
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if v, _ := strconv.ParseInt(m[1], 10, 64); v > latest {
			latest = v
		}
	}
	if latest == 0 {
		return nil, nil
	}
	t, err := time.Parse(versionLayout, strconv.FormatInt(latest, 10))
	if err != nil {
		return nil, fmt.Errorf("parse version %d: %w", latest, err)
	}
	return &t, nil
}
