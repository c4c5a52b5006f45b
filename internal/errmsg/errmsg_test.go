package errmsg

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gradlemend/gradlemend/internal/gradle"
	"github.com/gradlemend/gradlemend/internal/oracle"
	"github.com/gradlemend/gradlemend/internal/patch"
)

func TestFormatNil(t *testing.T) {
	if got := Format(nil, nil); got != "" {
		t.Errorf("Format(nil) = %q", got)
	}
}

func TestFormatInvocationError(t *testing.T) {
	err := &gradle.InvocationError{Dir: "/tmp/demo", Err: errors.New("no gradlew")}
	got := Format(err, &ErrorContext{ProjectPath: "/tmp/demo"})

	if !strings.Contains(got, "Possible causes:") {
		t.Error("expected possible causes section")
	}
	if !strings.Contains(got, "gradle wrapper") {
		t.Error("expected wrapper suggestion")
	}
	if !strings.Contains(got, "/tmp/demo") {
		t.Error("expected the project path in suggestions")
	}
}

func TestFormatUnparsableError(t *testing.T) {
	got := Format(&oracle.UnparsableError{Raw: "free text"}, nil)

	if !strings.Contains(got, "--provider") {
		t.Error("expected provider suggestion")
	}
}

func TestFormatWriteError(t *testing.T) {
	err := &patch.WriteError{Path: "/srv/app/gradle.properties", Err: errors.New("permission denied")}
	got := Format(err, nil)

	if !strings.Contains(got, "/srv/app/gradle.properties") {
		t.Error("expected the target path in suggestions")
	}
	if !strings.Contains(got, "permissions") {
		t.Error("expected a permissions hint")
	}
}

func TestFormatWrappedErrors(t *testing.T) {
	// Formatting must see through wrapping.
	inner := &gradle.InvocationError{Dir: "/tmp/demo", Err: errors.New("nope")}
	got := Format(fmt.Errorf("repair failed: %w", inner), nil)

	if !strings.Contains(got, "Possible causes:") {
		t.Error("wrapped invocation error not recognized")
	}
}

func TestFormatOracleTimeout(t *testing.T) {
	err := fmt.Errorf("%w after 2m0s (provider claude)", oracle.ErrTimeout)
	got := Format(err, nil)

	if !strings.Contains(got, "oracle_timeout") {
		t.Error("expected a timeout config suggestion")
	}
}

func TestFormatNetworkError(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.1:443: connection refused")
	got := Format(err, nil)

	if !strings.Contains(got, "internet connection") {
		t.Error("expected a connectivity suggestion")
	}
}

func TestFormatUnknownErrorPassesThrough(t *testing.T) {
	err := errors.New("something else entirely")
	if got := Format(err, nil); got != err.Error() {
		t.Errorf("unknown errors must pass through, got %q", got)
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp: lookup api.anthropic.com: no such host", true},
		{"read: connection reset by peer", true},
		{"i/o timeout", true},
		{"file not found", false},
	}
	for _, tt := range tests {
		if got := isNetworkError(tt.msg); got != tt.want {
			t.Errorf("isNetworkError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
