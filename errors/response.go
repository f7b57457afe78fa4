package errors

// ErrorLine is the structured form of a failure written to the error channel.
type ErrorLine struct {
	ID        string    `json:"id"`
	Index     int       `json:"index"`
	ErrorKind ErrorCode `json:"error_kind"`
	Message   string    `json:"message"`
	Operator  string    `json:"operator,omitempty"`
	Cause     string    `json:"cause,omitempty"`
	Attempts  int       `json:"attempts,omitempty"`
}

// ToLine converts err into an ErrorLine for the record with the given id and input index.
func ToLine(id string, index int, err error) ErrorLine {
	line := ErrorLine{
		ID:        id,
		Index:     index,
		ErrorKind: Kind(err),
	}
	if err != nil {
		line.Message = err.Error()
	}
	if appErr, ok := AsAppError(err); ok {
		if c, ok := appErr.Details["cause"].(string); ok {
			line.Cause = c
		}
		if n, ok := appErr.Details["attempts"].(int); ok {
			line.Attempts = n
		}
	}
	return line
}
