package flow

import (
	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
)

// Outcome is the result of processing one input record. Err is nil on
// success. Index is the record's position in the input.
type Outcome struct {
	Index  int
	ID     string
	Record record.Record
	Err    error
}

// OK reports success.
func (o Outcome) OK() bool { return o.Err == nil }

// Kind returns the error kind, or "" on success.
func (o Outcome) Kind() errors.ErrorCode { return errors.Kind(o.Err) }

// Success builds a successful outcome.
func Success(index int, rec record.Record) Outcome {
	return Outcome{Index: index, ID: rec.ID(), Record: rec}
}

// Failure builds a failed outcome.
func Failure(index int, id string, err error) Outcome {
	return Outcome{Index: index, ID: id, Err: err}
}
