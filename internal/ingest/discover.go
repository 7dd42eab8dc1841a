package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type SourceFile struct {
	Path string
	// Deck is the collection name implied by the file when the source is a
	// directory of decks; empty for a single-file source.
	Deck string
}

// DiscoverSource resolves root to the JSON files that make up the topic
// source. A file is returned as is; a directory yields every *.json below it
// in lexical path order.
func DiscoverSource(root string) ([]SourceFile, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []SourceFile{{Path: root}}, nil
	}

	var out []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			base := d.Name()
			out = append(out, SourceFile{
				Path: path,
				Deck: strings.TrimSuffix(base, filepath.Ext(base)),
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, err
}
