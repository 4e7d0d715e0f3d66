package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/derby-clock-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. live serves the websocket
// feed and may be nil.
func NewRouter(handler *handlers.Handler, live nethttp.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready)
	mux.HandleFunc("GET /rosters", handler.Rosters)

	mux.HandleFunc("POST /game", handler.StartBout)
	mux.HandleFunc("GET /game", handler.Game)
	mux.HandleFunc("GET /game/scoreboard", handler.Scoreboard)
	mux.HandleFunc("GET /game/score", handler.Score)
	mux.HandleFunc("GET /game/period", handler.PeriodTime)
	mux.HandleFunc("GET /game/active", handler.ActiveClock)
	mux.HandleFunc("GET /game/allowances", handler.Allowances)
	mux.HandleFunc("GET /game/jams", handler.Jams)
	mux.HandleFunc("GET /game/penalties/{team}", handler.Penalties)
	mux.HandleFunc("GET /game/roster/{team}", handler.Roster)

	mux.HandleFunc("POST /game/jam/start", handler.StartJam)
	mux.HandleFunc("POST /game/jam/stop", handler.StopJam)
	mux.HandleFunc("POST /game/timeout/official", handler.OfficialTimeout)
	mux.HandleFunc("POST /game/timeout/{team}", handler.TeamTimeout)
	mux.HandleFunc("POST /game/review/{team}", handler.OfficialReview)
	mux.HandleFunc("POST /game/review/{team}/lost", handler.ReviewLost)
	mux.HandleFunc("PUT /game/clock/period", handler.SetPeriodClock)
	mux.HandleFunc("PUT /game/clock/intermission", handler.SetIntermissionClock)
	mux.HandleFunc("POST /game/score/{team}", handler.AdjustScore)
	mux.HandleFunc("PUT /game/starpass/{team}", handler.SetStarPass)
	mux.HandleFunc("POST /game/penalties/{team}", handler.RecordPenalty)
	mux.HandleFunc("POST /game/jams/{jam}/{team}", handler.UpdateJam)

	mux.HandleFunc("GET /bouts", handler.Bouts)
	mux.HandleFunc("GET /bouts/{id}", handler.Bout)

	if live != nil {
		mux.Handle("GET /game/live", live)
	}
	return mux
}
