package checks

import (
	"errors"

	"scorecard/internal/textread"
)

func NewResult(t Target, checkID string, status Status, message string) Result {
	return Result{
		CheckID: checkID,
		Repo:    t.Name(),
		Status:  status,
		Message: message,
	}
}

func PassResult(t Target, checkID string, message string) Result {
	return NewResult(t, checkID, StatusPass, message)
}

func FailResult(t Target, checkID string, message string) Result {
	return NewResult(t, checkID, StatusFail, message)
}

func ErrorResult(t Target, checkID string, message string) Result {
	return NewResult(t, checkID, StatusError, message)
}

func PassResultWithMetadata(t Target, checkID string, message string, metadata map[string]any) Result {
	res := NewResult(t, checkID, StatusPass, message)
	res.Metadata = metadata
	return res
}

func FailResultWithMetadata(t Target, checkID string, message string, metadata map[string]any) Result {
	res := NewResult(t, checkID, StatusFail, message)
	res.Metadata = metadata
	return res
}

// ReadFailure turns an error from Target.ReadText into a result. Undecodable
// content under strict decoding fails the check; anything else is a fault.
func ReadFailure(t Target, checkID string, err error) Result {
	var de *textread.DecodeError
	if errors.As(err, &de) {
		return FailResultWithMetadata(t, checkID, err.Error(), map[string]any{"offset": de.Offset})
	}
	return ErrorResult(t, checkID, err.Error())
}
