package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestNotifier(client *http.Client) (*Notifier, *[]time.Duration) {
	var slept []time.Duration
	n := NewNotifier()
	n.httpClient = client
	n.sleep = func(d time.Duration) { slept = append(slept, d) }
	return n, &slept
}

func testPayload() NotificationPayload {
	return NotificationPayload{
		Event:           EventPaymentSucceeded,
		OrderID:         "ord_123",
		ProviderID:      1,
		ProviderName:    "Bitloader",
		ServiceID:       7,
		ServiceName:     "Boost Pack",
		Amount:          50,
		Status:          "paid",
		PaymentIntentID: "pi_abc",
		Timestamp:       NowTimestamp(),
	}
}

func TestDeliver_FirstAttemptSucceeds(t *testing.T) {
	var calls int32
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotHeader = r.Header.Get("X-DZTech-Webhook")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, slept := newTestNotifier(srv.Client())
	if err := n.Deliver(context.Background(), srv.URL, testPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("first attempt must be immediate, slept %v", *slept)
	}
	if gotHeader != "payment-notification" {
		t.Fatalf("missing identifying header, got %q", gotHeader)
	}
}

func TestDeliver_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 5 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, slept := newTestNotifier(srv.Client())
	if err := n.Deliver(context.Background(), srv.URL, testPayload()); err != nil {
		t.Fatalf("expected success on 5th attempt, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", calls)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d backoff waits, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("backoff %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestDeliver_Exhaustion(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n, _ := newTestNotifier(srv.Client())
	if err := n.Deliver(context.Background(), srv.URL, testPayload()); err == nil {
		t.Fatalf("expected terminal error after exhaustion")
	}
	if calls != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", calls)
	}
}

func TestDeliver_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse every connection

	n, slept := newTestNotifier(&http.Client{Timeout: time.Second})
	if err := n.Deliver(context.Background(), srv.URL, testPayload()); err == nil {
		t.Fatalf("expected error against unreachable endpoint")
	}
	if len(*slept) != 4 {
		t.Fatalf("expected 4 backoff waits, got %v", *slept)
	}
}
