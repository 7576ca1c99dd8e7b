package tts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// newTestRetrier records requested pauses instead of sleeping.
func newTestRetrier(sleeps *[]time.Duration) *Retrier {
	r := NewRetrier(log.New(&strings.Builder{}))
	r.Jitter = func(time.Duration) time.Duration { return 250 * time.Millisecond }
	r.Sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return r
}

func TestRetrier_AlwaysRetriable(t *testing.T) {
	var sleeps []time.Duration
	r := newTestRetrier(&sleeps)

	calls := 0
	err := r.Do(context.Background(), "generateSpeech", func(context.Context) error {
		calls++
		return NewStatusError(http.StatusInternalServerError, "upstream down")
	})

	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}

	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("error = %v, want SynthesisError", err)
	}
	if synthErr.Attempts != 4 || synthErr.Op != "generateSpeech" {
		t.Errorf("annotation = (%q, %d), want (generateSpeech, 4)", synthErr.Op, synthErr.Attempts)
	}
	if synthErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", synthErr.StatusCode)
	}

	want := []time.Duration{
		1250 * time.Millisecond,
		2250 * time.Millisecond,
		4250 * time.Millisecond,
	}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestRetrier_NonRetriableShortCircuits(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity} {
		var sleeps []time.Duration
		r := newTestRetrier(&sleeps)

		calls := 0
		err := r.Do(context.Background(), "op", func(context.Context) error {
			calls++
			return NewStatusError(status, "nope")
		})

		if calls != 1 {
			t.Errorf("status %d: calls = %d, want 1", status, calls)
		}
		if len(sleeps) != 0 {
			t.Errorf("status %d: slept %v", status, sleeps)
		}
		if IsRetriable(err) {
			t.Errorf("status %d: error marked retriable", status)
		}
	}
}

func TestRetrier_TransportErrorNotRetried(t *testing.T) {
	var sleeps []time.Duration
	r := newTestRetrier(&sleeps)

	cause := errors.New("connection refused")
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return cause
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v does not wrap the cause", err)
	}
}

func TestRetrier_RecoversAfterTransientFailures(t *testing.T) {
	var sleeps []time.Duration
	r := newTestRetrier(&sleeps)

	failures := []error{
		NewStatusError(http.StatusTooManyRequests, "slow down"),
		&SynthesisError{StatusCode: http.StatusOK, Retriable: true, Err: ErrEmptyAudio},
		NewStatusError(http.StatusRequestTimeout, ""),
	}
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls <= len(failures) {
			return failures[calls-1]
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if len(sleeps) != 3 {
		t.Errorf("sleeps = %d, want 3", len(sleeps))
	}
}

func TestRetrier_CancelledDuringBackoff(t *testing.T) {
	r := NewRetrier(log.New(&strings.Builder{}))
	r.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "op", func(context.Context) error {
			calls++
			return NewStatusError(http.StatusServiceUnavailable, "")
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestRetrier_Backoff(t *testing.T) {
	r := NewRetrier(nil)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := r.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRetrier_DefaultJitterInRange(t *testing.T) {
	r := NewRetrier(nil)
	for i := 0; i < 1000; i++ {
		j := r.jitter()
		if j < 0 || j >= r.MaxJitter {
			t.Fatalf("jitter %v outside [0, %v)", j, r.MaxJitter)
		}
	}
}

func TestIsRetriableStatus(t *testing.T) {
	tests := map[int]bool{
		200: false,
		400: false,
		401: false,
		403: false,
		408: true,
		422: false,
		429: true,
		500: true,
		502: true,
		503: true,
	}
	for status, want := range tests {
		if got := IsRetriableStatus(status); got != want {
			t.Errorf("IsRetriableStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestSynthesisError_Message(t *testing.T) {
	err := &SynthesisError{
		Op:         `generateSpeech("GO!")`,
		StatusCode: 503,
		Body:       "busy",
		Attempts:   4,
	}
	want := `generateSpeech("GO!"): provider returned 503 Service Unavailable - busy (after 4 attempts)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
