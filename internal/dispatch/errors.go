package dispatch

import (
	"context"
	"errors"

	"github.com/mmynk/ridesplit/internal/ledger"
)

// Kind classifies a ledger error for transports.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindStorage     Kind = "storage"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	switch {
	case ledger.IsValidation(err):
		return KindValidation
	case ledger.IsNotFound(err):
		return KindNotFound
	case ledger.IsConflict(err):
		return KindConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindUnavailable
	case ledger.IsStorage(err):
		return KindStorage
	default:
		return KindInternal
	}
}

// NewErrorBody describes err for a response body.
func NewErrorBody(err error) *ErrorBody {
	body := &ErrorBody{Kind: Classify(err), Message: err.Error()}
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	return body
}

// ErrorResponse wraps err in a Response.
func ErrorResponse(err error) *Response {
	return &Response{Error: NewErrorBody(err)}
}
