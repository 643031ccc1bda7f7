package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapCommandError_mapsCodes(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{NewInvalidArgument("bad field"), codes.InvalidArgument},
		{NewFailedPrecondition("not ready"), codes.FailedPrecondition},
		{NewNotFound("missing"), codes.NotFound},
		{fmt.Errorf("wrapped: %w", NewNotFound("missing")), codes.NotFound},
		{errors.New("something broke"), codes.Internal},
	}
	for _, tt := range tests {
		st, ok := status.FromError(MapCommandError(tt.err))
		if !ok {
			t.Fatal("expected gRPC status error")
		}
		if st.Code() != tt.want {
			t.Errorf("MapCommandError(%v): expected %v, got %v", tt.err, tt.want, st.Code())
		}
	}
}

func TestMapCommandError_keepsMessage(t *testing.T) {
	st, _ := status.FromError(MapCommandError(NewInvalidArgument("bad field")))
	if st.Message() != "bad field" {
		t.Errorf("expected 'bad field', got %q", st.Message())
	}
}

func TestHTTPStatus_mapsCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewInvalidArgument("bad"), http.StatusBadRequest},
		{NewFailedPrecondition("not ready"), http.StatusConflict},
		{NewNotFound("missing"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
