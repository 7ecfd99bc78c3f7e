package workset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Fixed codec pair. flacpress converts exactly one source format to one
// target format; there is no negotiation.
const (
	SourceExt = ".flac"
	TargetExt = ".mp3"
)

// Item pairs a discovered source file with its derived target path. Items
// are immutable once discovery completes.
type Item struct {
	Source string
	Target string
}

// RelSource returns the source path relative to root, falling back to the
// base name when the paths do not share a prefix.
func (i Item) RelSource(root string) string {
	rel, err := filepath.Rel(root, i.Source)
	if err != nil {
		return filepath.Base(i.Source)
	}
	return rel
}

// Discover walks root and returns one Item per FLAC file, in traversal
// order. Hidden directories are included; symlinks are not followed beyond
// WalkDir's default behavior. Root must be an existing directory.
func Discover(root string) ([]Item, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", absRoot)
	}

	var items []Item
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), SourceExt) {
			return nil
		}
		items = append(items, Item{Source: path, Target: TargetPath(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", absRoot, err)
	}
	return items, nil
}

// TargetPath maps a source path to its target path by swapping the file
// extension in place. The output lives beside the source, preserving the
// tree's relative structure.
func TargetPath(source string) string {
	ext := filepath.Ext(source)
	return source[:len(source)-len(ext)] + TargetExt
}
