package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestCheckConsistency_Passed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ledger/consistency" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_debits":"500","total_credits":"500","consistent":true}`))
	}))
	defer server.Close()

	baseURL = server.URL
	token = "test-token"

	out := captureOutput(t, checkConsistency)

	if !strings.Contains(out, "Consistency check PASSED") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Total debits:  500") {
		t.Fatalf("expected totals in output:\n%s", out)
	}
}

func TestRequest_SetsIdempotencyKeyOnPost(t *testing.T) {
	var key string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	baseURL = server.URL

	resp, _ := request(http.MethodPost, "/api/v1/transactions", []byte(`{}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if key == "" {
		t.Fatal("expected an idempotency key on POST requests")
	}
}
