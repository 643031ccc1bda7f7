// Package client provides a gRPC client for the selection service.
package client

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind says at which stage a client call failed.
type ErrorKind int

const (
	// ErrConnection means the server could not be reached.
	ErrConnection ErrorKind = iota
	// ErrRejected means the server answered with a non-OK status.
	ErrRejected
	// ErrInvalidArgument means the command was refused before it was sent.
	ErrInvalidArgument
	// ErrInvalidResponse means the reply could not be decoded.
	ErrInvalidResponse
)

// ClientError is returned by every Client method.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ClientError) Unwrap() error { return e.Cause }

// Status returns the gRPC status carried by the cause, or nil.
func (e *ClientError) Status() *status.Status {
	if e.Cause == nil || e.Kind == ErrInvalidResponse {
		return nil
	}
	if st, ok := status.FromError(e.Cause); ok {
		return st
	}
	return nil
}

// Code returns the gRPC code of a rejection. Anything else is codes.Unknown.
func (e *ClientError) Code() codes.Code {
	if e.Kind != ErrRejected {
		return codes.Unknown
	}
	if st := e.Status(); st != nil {
		return st.Code()
	}
	return codes.Unknown
}

// Reason is the server's status message when there is one, else Message.
func (e *ClientError) Reason() string {
	if st := e.Status(); st != nil && st.Message() != "" {
		return st.Message()
	}
	return e.Message
}

// IsNotFound reports an unknown session or instance.
func (e *ClientError) IsNotFound() bool { return e.Code() == codes.NotFound }

// IsPreconditionFailed reports a command the session cannot accept right now.
func (e *ClientError) IsPreconditionFailed() bool { return e.Code() == codes.FailedPrecondition }

// IsInvalidArgument reports a malformed command, local or server side.
func (e *ClientError) IsInvalidArgument() bool {
	return e.Kind == ErrInvalidArgument || e.Code() == codes.InvalidArgument
}

// IsConnectionError reports that the server was never reached.
func (e *ClientError) IsConnectionError() bool { return e.Kind == ErrConnection }

// ConnectionError wraps a dial or unavailability failure.
func ConnectionError(err error) *ClientError {
	return &ClientError{Kind: ErrConnection, Message: "selection server unreachable", Cause: err}
}

// RejectedError wraps an error status returned by the server.
func RejectedError(err error) *ClientError {
	return &ClientError{Kind: ErrRejected, Message: "command rejected", Cause: err}
}

// InvalidArgumentError reports a command refused before sending.
func InvalidArgumentError(msg string) *ClientError {
	return &ClientError{Kind: ErrInvalidArgument, Message: msg}
}

// InvalidResponseError wraps a response decoding failure.
func InvalidResponseError(err error) *ClientError {
	return &ClientError{Kind: ErrInvalidResponse, Message: "invalid response", Cause: err}
}

// callError sorts an error returned by the generated stub.
func callError(err error) *ClientError {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ConnectionError(err)
	default:
		return RejectedError(err)
	}
}

// AsClientError extracts a ClientError from an error chain.
func AsClientError(err error) *ClientError {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
