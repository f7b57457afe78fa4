package invoker

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/httpclient"
	"github.com/kbukum/jsonflow/llm"
)

// Classify maps a model client failure to its cause.
func Classify(err error) errors.Cause {
	if stderrors.Is(err, llm.ErrMalformedResponse) {
		return errors.CauseMalformedResponse
	}

	var herr *httpclient.Error
	if stderrors.As(err, &herr) {
		switch herr.Code {
		case httpclient.ErrCodeTimeout:
			return errors.CauseTimeout
		case httpclient.ErrCodeRateLimit:
			return errors.CauseRateLimit
		case httpclient.ErrCodeServer:
			return errors.CauseServerError
		case httpclient.ErrCodeAuth, httpclient.ErrCodeValidation:
			return errors.CauseClientError
		case httpclient.ErrCodeDecode:
			return errors.CauseMalformedResponse
		default:
			return errors.CauseTransport
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.CauseTimeout
	}
	return errors.CauseTransport
}

// CauseLabel is Classify as a metrics label.
func CauseLabel(err error) string { return string(Classify(err)) }
