package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/logger"
)

// Config controls how outcomes are written.
type Config struct {
	// Ordered releases outcomes in input index order instead of completion order.
	Ordered bool
}

// Sink routes outcomes to a result stream and an error stream. It is safe for
// concurrent use.
type Sink struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer
	log    *logger.Logger

	mu      sync.Mutex
	next    int
	pending map[int]flow.Outcome
	written int
	failed  int
}

// New creates a Sink. errOut may be nil, in which case failures are only logged.
func New(out, errOut io.Writer, cfg Config, log *logger.Logger) *Sink {
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{
		cfg:     cfg,
		out:     out,
		errOut:  errOut,
		log:     log.WithComponent("sink"),
		pending: make(map[int]flow.Outcome),
	}
}

// Emit writes o, or holds it until every lower index has been written when
// the sink is ordered.
func (s *Sink) Emit(o flow.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Ordered {
		return s.write(o)
	}

	s.pending[o.Index] = o
	for {
		ready, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)
		s.next++
		if err := s.write(ready); err != nil {
			return err
		}
	}
}

// Flush writes any outcomes still buffered, lowest index first. It only has
// work to do when the run ended with gaps in the index sequence.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) > 0 {
		s.log.Warn("flushing buffered outcomes with index gaps", logger.Fields("buffered", len(s.pending), "next_index", s.next))
	}
	for len(s.pending) > 0 {
		lowest := -1
		for idx := range s.pending {
			if lowest < 0 || idx < lowest {
				lowest = idx
			}
		}
		o := s.pending[lowest]
		delete(s.pending, lowest)
		if err := s.write(o); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the number of result lines and error lines written so far.
func (s *Sink) Counts() (written, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written, s.failed
}

func (s *Sink) write(o flow.Outcome) error {
	if o.OK() {
		if err := WriteRecord(s.out, o); err != nil {
			return err
		}
		s.written++
		return nil
	}

	s.failed++
	if s.errOut == nil {
		return nil
	}
	return WriteError(s.errOut, o)
}

// WriteRecord writes the record of a successful outcome as one JSON line.
func WriteRecord(w io.Writer, o flow.Outcome) error {
	data, err := o.Record.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode record %s: %w", o.ID, err)
	}
	return writeLine(w, data)
}

// ErrorLine builds the error-channel entry for a failed outcome.
func ErrorLine(o flow.Outcome) errors.ErrorLine {
	line := errors.ToLine(o.ID, o.Index, o.Err)
	if op, ok := flow.FailedOperator(o.Err); ok {
		line.Operator = op
	}
	return line
}

// WriteError writes a failed outcome as one JSON line.
func WriteError(w io.Writer, o flow.Outcome) error {
	data, err := sonic.Marshal(ErrorLine(o))
	if err != nil {
		return fmt.Errorf("encode error line %s: %w", o.ID, err)
	}
	return writeLine(w, data)
}

func writeLine(w io.Writer, data []byte) error {
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
