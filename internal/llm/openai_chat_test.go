package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

// timeoutError mimics a transport failure where the deadline expired.
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"context deadline", context.DeadlineExceeded, ErrTimeout},
		{"net timeout", timeoutError{}, ErrTimeout},
		{"connection refused", errors.New("connection refused"), ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provErr := classifyTransportError("groq", tt.err)
			if provErr.Kind != tt.want {
				t.Errorf("expected kind %s, got %s", tt.want, provErr.Kind)
			}
			if provErr.Provider != "groq" {
				t.Errorf("expected provider groq, got %s", provErr.Provider)
			}
		})
	}
}

func TestGenerateTimeoutSurfacesAsTimeoutError(t *testing.T) {
	client, err := NewGroqClient("gsk-test", "llama-3.1-8b-instant", 0, 0, 0)
	if err != nil {
		t.Fatalf("NewGroqClient returned error: %v", err)
	}
	client.client = newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})

	_, err = client.Generate(context.Background(), "hello", "", nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if provErr.Kind != ErrTimeout {
		t.Errorf("expected kind %s, got %s", ErrTimeout, provErr.Kind)
	}

	// A timed-out request never counts against the local budget.
	if used := client.limiter.Status().RPMUsed; used != 0 {
		t.Errorf("expected 0 recorded requests, got %d", used)
	}
}
