// SPDX-License-Identifier: Apache-2.0

// Package migrations embeds one goose migration set per schema variant.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed v1/*.sql v2/*.sql v3/*.sql v4/*.sql
var embeddedFiles embed.FS

type File struct {
	Name string
	SQL  string
}

// Sets lists the embedded migration set names in order.
func Sets() []string {
	entries, err := fs.ReadDir(embeddedFiles, ".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	sort.Strings(out)
	return out
}

// FS returns the migration set rooted at its own directory. An empty dir
// selects the embedded copy; otherwise <dir>/<set> on disk is used.
func FS(dir, set string) (fs.FS, error) {
	set = strings.TrimSpace(set)
	if set == "" || strings.ContainsAny(set, `/\`) || set == "." || set == ".." {
		return nil, fmt.Errorf("invalid migration set %q", set)
	}

	if dir != "" {
		root := filepath.Join(dir, set)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("migration set %s: %w", set, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("migration set %s: %s is not a directory", set, root)
		}
		return os.DirFS(root), nil
	}

	if _, err := fs.Stat(embeddedFiles, set); err != nil {
		return nil, fmt.Errorf("migration set %s: %w", set, err)
	}
	return fs.Sub(embeddedFiles, set)
}

// Ordered returns the .sql files of one set sorted by name.
func Ordered(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		body, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Name: entry.Name(),
			SQL:  string(body),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
