package flow

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
)

// StepError reports which operator failed.
type StepError struct {
	Index    int
	Operator string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Operator, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Pipeline applies operators in order.
type Pipeline struct {
	ops []Operator
}

// New builds a pipeline. The operator slice is copied.
func New(ops ...Operator) *Pipeline {
	cp := make([]Operator, len(ops))
	copy(cp, ops)
	return &Pipeline{ops: cp}
}

// Len returns the number of operators.
func (p *Pipeline) Len() int { return len(p.ops) }

// Names returns the operator names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.ops))
	for i, op := range p.ops {
		names[i] = op.Name()
	}
	return names
}

// Apply runs every operator on a copy of in. On failure it returns the
// partially processed copy and a *StepError; no later operator runs.
func (p *Pipeline) Apply(ctx context.Context, in record.Record) (record.Record, error) {
	out := in.Clone()
	for i, op := range p.ops {
		if err := ctx.Err(); err != nil {
			return out, &StepError{Index: i, Operator: op.Name(), Err: errors.Canceled(op.Name(), err)}
		}
		if err := applyStep(ctx, op, &out); err != nil {
			return out, &StepError{Index: i, Operator: op.Name(), Err: err}
		}
	}
	return out, nil
}

func applyStep(ctx context.Context, op Operator, rec *record.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Processingf("operator panicked: %v", r)
		}
	}()
	return op.Apply(ctx, rec)
}

// FailedOperator returns the operator name carried by err, if any.
func FailedOperator(err error) (string, bool) {
	var se *StepError
	if stderrors.As(err, &se) {
		return se.Operator, true
	}
	return "", false
}
