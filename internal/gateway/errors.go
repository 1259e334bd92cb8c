package gateway

import (
	"context"
	"errors"
	"fmt"

	"candidate-insights/internal/llm"
)

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	KindCredential ErrorKind = "credential"
	KindTransport  ErrorKind = "transport"
	KindStatus     ErrorKind = "status"
	KindParse      ErrorKind = "parse"
	KindSchema     ErrorKind = "schema"
	KindCanceled   ErrorKind = "canceled"
)

// GatewayError is the only error the gateway returns. Message is safe to show
// to users; the wrapped cause is for logs.
type GatewayError struct {
	Op      string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error text for logging.
func (e *GatewayError) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func callError(op string, err error) *GatewayError {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrCredentialMissing):
		return &GatewayError{Op: op, Kind: KindCredential, Message: "The AI service is not configured with an API key.", Err: err}
	case errors.Is(err, llm.ErrNotConfigured):
		return &GatewayError{Op: op, Kind: KindCredential, Message: "AI analysis is disabled on this server.", Err: err}
	case errors.Is(err, context.Canceled):
		return &GatewayError{Op: op, Kind: KindCanceled, Message: "The request was canceled.", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &GatewayError{Op: op, Kind: KindTransport, Message: "The AI service did not respond in time.", Err: err}
	case errors.As(err, &statusErr) && statusErr.Unauthorized():
		return &GatewayError{Op: op, Kind: KindCredential, Message: "The AI service rejected the configured API key.", Err: err}
	case errors.As(err, &statusErr):
		return &GatewayError{Op: op, Kind: KindStatus, Message: fmt.Sprintf("The AI service returned an error (status %d).", statusErr.Code), Err: err}
	default:
		return &GatewayError{Op: op, Kind: KindTransport, Message: "The AI service could not be reached.", Err: err}
	}
}

func parseError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Kind: KindParse, Message: "The AI service returned a response that is not valid JSON.", Err: err}
}

func schemaError(op, detail string) *GatewayError {
	return &GatewayError{Op: op, Kind: KindSchema, Message: "The AI service returned an incomplete response.", Err: errors.New(detail)}
}
