package source

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/operators"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/stream"
)

// TextRecord builds a single record from input. When input names a regular
// file its content is used, otherwise input is the text itself. The record
// gets a random id.
func TextRecord(input string) (record.Record, error) {
	text := input
	if info, err := os.Stat(input); err == nil && info.Mode().IsRegular() {
		data, err := os.ReadFile(input)
		if err != nil {
			return record.Record{}, errors.Configurationf("read input %s", input).WithCause(err)
		}
		text = string(data)
	}
	if text == "" {
		return record.Record{}, errors.Configuration("input text is empty")
	}
	return record.New(record.FieldID, uuid.NewString(), operators.FieldInputText, text), nil
}

// Text returns a one-record stream for input. See TextRecord.
func Text(input string) (stream.Iterator[record.Record], error) {
	rec, err := TextRecord(input)
	if err != nil {
		return nil, fmt.Errorf("text input: %w", err)
	}
	return stream.FromSlice([]record.Record{rec}), nil
}
