package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/stream"
)

// MaxLineSize bounds a single JSONL line. Records carrying base64 images can
// be large.
const MaxLineSize = 64 << 20

// IsJSONL reports whether path names a newline-delimited JSON file by extension.
func IsJSONL(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return true
	}
	return false
}

// OpenJSONL opens a JSONL file. A missing or unreadable file is a
// configuration error since no record can be produced from it.
func OpenJSONL(path string) (stream.Iterator[record.Record], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Configurationf("open input %s", path).WithCause(err)
	}
	return NewJSONL(f, f.Close), nil
}

// NewJSONL reads one record per line from r. Blank lines are skipped. A line
// that is not a JSON object yields a *record.DecodeError and reading
// continues with the next line. closer may be nil.
func NewJSONL(r io.Reader, closer func() error) stream.Iterator[record.Record] {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	line := 0

	return stream.FromFunc(func(ctx context.Context) (record.Record, bool, error) {
		for {
			if err := ctx.Err(); err != nil {
				return record.Record{}, false, err
			}
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return record.Record{}, false, fmt.Errorf("read line %d: %w", line+1, err)
				}
				return record.Record{}, false, nil
			}
			line++

			data := sc.Bytes()
			if len(bytes.TrimSpace(data)) == 0 {
				continue
			}
			rec, err := record.Parse(data)
			if err != nil {
				return record.Record{}, false, &record.DecodeError{Line: line, Err: err}
			}
			return rec, true, nil
		}
	}, closer)
}
