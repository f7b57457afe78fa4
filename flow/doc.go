// Package flow defines the Operator contract and the Pipeline that chains
// operators over one record.
//
// A Pipeline is immutable once built and safe for concurrent use when its
// operators are. Apply works on a private copy of the input record, stops at
// the first failing operator and reports the failure as a *StepError that
// names the operator and its position.
//
//	p := flow.New(textProcessor, invoker, summarizer)
//	out, err := p.Apply(ctx, rec)
//
// The run deadline travels in the context (WithDeadline). It is advisory:
// operators that start new work, such as a model attempt, consult it, while
// work already in progress is allowed to finish.
package flow
