package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
	"github.com/preston-bernstein/derby-clock-service/internal/testutil"
)

func TestWriteErrorIncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	logger, _ := testutil.NewBufferLogger()

	req.Header.Set("X-Request-ID", "abc123")

	rr := testutil.ServeRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTeapot, "boom", logger)
	}), req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content type json, got %s", got)
	}
	body := rr.Body.String()
	if !bytes.Contains([]byte(body), []byte("abc123")) {
		t.Fatalf("expected requestId in body, got %s", body)
	}
}

func TestWriteJSONLogsEncodeError(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	rr := testutil.Serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, make(chan int), logger)
	}), http.MethodGet, "/encode-error", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status written even on encode error, got %d", rr.Code)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected logger to record encode error")
	}
}

func TestWriteErrorFallsBackToHeaderRequestID(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "header-id")
	writeError(rr, req, http.StatusTeapot, "boom", logger)
	if !bytes.Contains(rr.Body.Bytes(), []byte("header-id")) {
		t.Fatalf("expected header request id used when context missing")
	}
}

func TestWriteServiceErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrNoBout, http.StatusConflict},
		{fmt.Errorf("%w: home", bout.ErrInvalidStart), http.StatusBadRequest},
		{gamestate.ErrInvalidTeam, http.StatusBadRequest},
		{fmt.Errorf("%w: 9", gamestate.ErrUnknownJam), http.StatusNotFound},
		{snapshots.ErrNotFound, http.StatusNotFound},
		{snapshots.ErrNotConfigured, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		logger, _ := testutil.NewBufferLogger()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/game", nil)
		writeServiceError(rr, req, tt.err, logger)
		if rr.Code != tt.want {
			t.Fatalf("%v: expected status %d, got %d", tt.err, tt.want, rr.Code)
		}
	}
}
