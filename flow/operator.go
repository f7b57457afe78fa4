package flow

import (
	"context"

	"github.com/kbukum/jsonflow/record"
)

// Operator is one processing step. Apply reads fields from rec and adds or
// overwrites its own output fields; it never deletes keys.
type Operator interface {
	Name() string
	Apply(ctx context.Context, rec *record.Record) error
}

// OperatorFunc adapts a function to Operator.
type OperatorFunc struct {
	OpName string
	Fn     func(ctx context.Context, rec *record.Record) error
}

// Name returns OpName.
func (f OperatorFunc) Name() string { return f.OpName }

// Apply calls Fn.
func (f OperatorFunc) Apply(ctx context.Context, rec *record.Record) error {
	return f.Fn(ctx, rec)
}
