package source

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/operators"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/stream"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// IsImage reports whether name has a supported image extension, in any case.
func IsImage(name string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(name)))
}

// ImagePaths lists the images directly inside dir, sorted by name. limit > 0
// keeps only the first limit entries.
func ImagePaths(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Configurationf("read image directory %s", dir).WithCause(err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	if len(paths) == 0 {
		return nil, errors.Configurationf("no images found in %s", dir)
	}
	return paths, nil
}

// Images returns a stream of {id, image_path} records, one per image in dir.
// The id is the file name, which is unique within dir.
func Images(dir string, limit int) (stream.Iterator[record.Record], error) {
	paths, err := ImagePaths(dir, limit)
	if err != nil {
		return nil, err
	}
	recs := make([]record.Record, len(paths))
	for i, p := range paths {
		recs[i] = record.New(record.FieldID, filepath.Base(p), operators.FieldImagePath, p)
	}
	return stream.FromSlice(recs), nil
}
