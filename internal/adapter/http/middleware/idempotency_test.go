package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/moneyledger/moneyledger/internal/usecase"
	"github.com/moneyledger/moneyledger/internal/usecase/mocks"
)

const testTTL = time.Hour

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-1", gomock.Nil(), testTTL).
		Return(true, []byte(`{"message":"Transaction completed successfully"}`), nil)

	mw := NewIdempotencyMiddleware(store, testTTL)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if called {
		t.Fatal("handler should not run on a cached key")
	}
	if rr.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay header")
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("completed successfully")) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestIdempotencyMiddleware_CachesCreatedResponses(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-2", gomock.Nil(), testTTL).
		Return(false, nil, nil)
	store.EXPECT().
		Update(gomock.Any(), "key-2", []byte(`{"id":"txn-1"}`), testTTL).
		Return(nil)

	mw := NewIdempotencyMiddleware(store, testTTL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-2")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"txn-1"}`))
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_DoesNotCacheNonCreatedResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"still processing", http.StatusOK},
		{"validation failure", http.StatusBadRequest},
		{"posting failure", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockIdempotencyStore(ctrl)
			store.EXPECT().
				CheckAndSet(gomock.Any(), "key-3", gomock.Nil(), testTTL).
				Return(false, nil, nil)
			// No Update expectation: caching here would pin a
			// transient answer for the key's lifetime. The claimed
			// placeholder is released instead so a retry gets the
			// fast path back immediately.
			store.EXPECT().
				Release(gomock.Any(), "key-3").
				Return(nil)

			mw := NewIdempotencyMiddleware(store, testTTL)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
			req.Header.Set(IdempotencyKeyHeader, "key-3")
			rr := httptest.NewRecorder()

			mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestIdempotencyMiddleware_ProcessingPlaceholderFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-4", gomock.Nil(), testTTL).
		Return(true, []byte("processing"), nil)

	mw := NewIdempotencyMiddleware(store, testTTL)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-4")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatal("placeholder must fall through to the engine's duplicate handling")
	}
}

func TestIdempotencyMiddleware_StoreErrorFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-5", gomock.Nil(), testTTL).
		Return(false, nil, context.DeadlineExceeded)

	mw := NewIdempotencyMiddleware(store, testTTL)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-5")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatal("a degraded store must not block submissions")
	}
}

func TestIdempotencyMiddleware_DefaultsTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-6", gomock.Nil(), usecase.IdempotencyKeyTTL).
		Return(true, []byte(`{"id":"txn-1"}`), nil)

	mw := NewIdempotencyMiddleware(store, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-6")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)

	if rr.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay with the default TTL")
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	// No expectations: the store must not be touched.

	mw := NewIdempotencyMiddleware(store, testTTL)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/transactions/txn-1", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`)),
	} {
		var called bool
		rr := httptest.NewRecorder()
		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(rr, req)

		if !called {
			t.Fatalf("%s %s: handler should run", req.Method, req.URL.Path)
		}
	}
}
