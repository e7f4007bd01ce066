package http

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRoundTripperRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := DefaultConfig()
	client.RetryWaitMin = time.Millisecond
	client.RetryWaitMax = time.Millisecond
	h := New(client, nil)

	resp, err := (&http.Client{Transport: h.RoundTripper()}).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := ExpectStatus2xx(resp); err != nil {
		t.Errorf("ExpectStatus2xx() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestExpectStatus2xx(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	_, _ = rec.WriteString("upstream down")

	err := ExpectStatus2xx(rec.Result())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
