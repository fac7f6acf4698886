package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  Conflict("relationship already exists"),
			want: "[CONFLICT] relationship already exists",
		},
		{
			name: "with wrapped error",
			err:  Transport("failed to query relationships", errors.New("connection refused")),
			want: "[TRANSPORT] failed to query relationships: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport("query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through AppError to the cause")
	}
}

func TestCodeOf_WrappedError(t *testing.T) {
	// The code must survive another layer of fmt.Errorf wrapping
	inner := NotAuthorized("only the recipient may accept")
	wrapped := fmt.Errorf("accept failed: %w", inner)

	if CodeOf(wrapped) != CodeNotAuthorized {
		t.Errorf("CodeOf(wrapped) = %q, want %q", CodeOf(wrapped), CodeNotAuthorized)
	}
	if !IsNotAuthorized(wrapped) {
		t.Error("IsNotAuthorized(wrapped) = false, want true")
	}
}

func TestCodeOf_PlainError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf(plain error) should be empty")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want bool
	}{
		{name: "transport is retryable", err: Transport("db down", nil), want: true},
		{name: "conflict is not", err: Conflict("duplicate"), want: false},
		{name: "invalid argument is not", err: InvalidArgument("bad id"), want: false},
		{name: "not authorized is not", err: NotAuthorized("wrong party"), want: false},
		{name: "invalid state is not", err: InvalidState("not pending"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
