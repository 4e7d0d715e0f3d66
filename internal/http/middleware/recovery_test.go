package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/testutil"
)

func TestRecoverConsistencyError(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(&gamestate.ConsistencyError{Phase: clock.Jam, Tag: gamestate.Tag{Kind: gamestate.TagHalftime}})
	})

	handler := LoggingMiddleware(logger, nil, Recover(logger, next))
	rr := testutil.Serve(handler, http.MethodGet, "/game/scoreboard", nil)

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "internal error" || body["requestId"] == "" {
		t.Fatalf("unexpected body %+v", body)
	}
	if !strings.Contains(buf.String(), "inconsistent game state") || !strings.Contains(buf.String(), "halftime") {
		t.Fatalf("expected consistency fault logged, got %s", buf.String())
	}
}

func TestRecoverOtherPanic(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := testutil.Serve(Recover(logger, next), http.MethodGet, "/", nil)

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(buf.String(), "handler panic") {
		t.Fatalf("expected panic logged, got %s", buf.String())
	}
}

func TestRecoverPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := testutil.Serve(Recover(nil, next), http.MethodGet, "/", nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}
