package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	loadapp "github.com/osvaldoandrade/contentschema/internal/app/load"
)

var entryExtensions = map[string]struct{}{
	".md":       {},
	".mdx":      {},
	".markdown": {},
}

// EntrySource reads content entries laid out as <root>/<collection>/<id>.md.
type EntrySource struct{}

func (EntrySource) ListCollections(ctx context.Context, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	var names []string
	for _, item := range items {
		if !item.IsDir() || ignored(item.Name()) {
			continue
		}
		names = append(names, item.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (EntrySource) ListEntries(ctx context.Context, root, collection string) ([]loadapp.EntryRef, error) {
	dir := filepath.Join(root, collection)
	var refs []loadapp.EntryRef
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir && ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := entryExtensions[ext]; !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("resolve entry path: %w", err)
		}
		refs = append(refs, loadapp.EntryRef{
			Collection: collection,
			ID:         filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))),
			Path:       path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", collection, err)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (EntrySource) ReadEntry(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	return data, nil
}

// Files beginning with "_" or "." are drafts or tooling files and never
// become entries.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
