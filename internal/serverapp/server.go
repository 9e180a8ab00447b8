package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"raidboss/internal/apperr"
	"raidboss/internal/battle"
	"raidboss/internal/config"
	"raidboss/internal/difficulty"
	"raidboss/internal/game"
	"raidboss/internal/httpmw"
	"raidboss/internal/jsonlog"
	"raidboss/static"

	"github.com/a-h/templ"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
	// Rand and Clock override the engine's damage source and clock.
	Rand  battle.Rand
	Clock game.Clock
}

// App hosts one engine behind a mutex. Every HTTP handler and the tick loop
// take the same lock.
type App struct {
	mu      sync.Mutex
	engine  *game.Engine
	cfg     *config.Config
	logger  *log.Logger
	started time.Time
	handler http.Handler
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	engine, err := game.FromConfig(opts.Config, game.Options{
		Rand:   opts.Rand,
		Clock:  opts.Clock,
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	a := &App{
		engine:  engine,
		cfg:     opts.Config,
		logger:  opts.Logger,
		started: opts.Clock.Now(),
	}
	a.handler = a.routes()
	return a, nil
}

// NewHandler builds an App and returns its HTTP handler.
func NewHandler(opts Options) (http.Handler, error) {
	a, err := New(opts)
	if err != nil {
		return nil, err
	}
	return a.Handler(), nil
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticfiles.EmbeddedFS()))))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "raidboss",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.mu.Lock()
		snap := a.engine.Snapshot()
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":             true,
			"service":        "raidboss",
			"time":           time.Now().UTC().Format(time.RFC3339),
			"battle_running": snap.Session != nil,
			"event_ended":    snap.EventEnded,
		})
	})

	mux.HandleFunc("/api/state", a.get(func(r *http.Request) (any, error) {
		return a.engine.Snapshot(), nil
	}))
	mux.HandleFunc("/api/catalog", a.get(func(r *http.Request) (any, error) {
		return map[string]any{
			"tiers": a.engine.Catalog().Tiers(),
			"rules": a.engine.Rules(),
		}, nil
	}))
	mux.HandleFunc("/api/config", a.get(func(r *http.Request) (any, error) {
		return a.cfg, nil
	}))
	mux.HandleFunc("/api/leaderboard", a.get(func(r *http.Request) (any, error) {
		rows, me := a.engine.Leaderboard(queryInt(r, "limit", 0))
		return map[string]any{"entries": rows, "me": me}, nil
	}))
	mux.HandleFunc("/api/rewards", a.get(func(r *http.Request) (any, error) {
		return a.engine.Rewards(), nil
	}))
	mux.HandleFunc("/api/history", a.get(func(r *http.Request) (any, error) {
		runs, err := a.engine.History(queryInt(r, "limit", 20))
		if err != nil {
			return nil, err
		}
		return map[string]any{"runs": runs}, nil
	}))
	mux.HandleFunc("/api/stats", a.get(func(r *http.Request) (any, error) {
		return a.engine.Stats(a.started)
	}))

	mux.HandleFunc("/api/tier", a.post(func(r *http.Request) (any, error) {
		var body struct {
			Tier string `json:"tier"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		id, ok := difficulty.Parse(body.Tier)
		if !ok {
			return nil, apperr.WithMetadata(apperr.CodeUnknownTier, "unknown tier", map[string]string{"tier": body.Tier})
		}
		return a.engine.SelectTier(id)
	}))
	mux.HandleFunc("/api/tier/navigate", a.post(func(r *http.Request) (any, error) {
		var body struct {
			Direction string `json:"direction"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		return a.engine.Navigate(game.Direction(strings.ToLower(strings.TrimSpace(body.Direction))))
	}))
	mux.HandleFunc("/api/battle/enter", a.post(func(r *http.Request) (any, error) {
		return a.engine.EnterBattle()
	}))
	mux.HandleFunc("/api/battle/tick", a.post(func(r *http.Request) (any, error) {
		return a.engine.Tick()
	}))
	mux.HandleFunc("/api/battle/forfeit", a.post(func(r *http.Request) (any, error) {
		if err := a.engine.Forfeit(); err != nil {
			return nil, err
		}
		return a.engine.Snapshot(), nil
	}))
	mux.HandleFunc("/api/sweep", a.post(func(r *http.Request) (any, error) {
		return a.engine.Sweep()
	}))
	mux.HandleFunc("/api/rewards/claim", a.post(func(r *http.Request) (any, error) {
		paid, err := a.engine.ClaimRewards()
		if err != nil {
			return nil, err
		}
		return map[string]any{"claimed": paid}, nil
	}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		a.mu.Lock()
		page := statusPage(statusData{
			Player:   a.cfg.Player.Name,
			Snapshot: a.engine.Snapshot(),
			Tiers:    a.engine.Catalog().Tiers(),
			Rewards:  a.engine.Rewards(),
		})
		a.mu.Unlock()
		templ.Handler(page).ServeHTTP(w, r)
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(a.logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(a.logger),
	)
}

type action func(r *http.Request) (any, error)

func (a *App) get(fn action) http.HandlerFunc  { return a.serve(http.MethodGet, fn) }
func (a *App) post(fn action) http.HandlerFunc { return a.serve(http.MethodPost, fn) }

func (a *App) serve(method string, fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		a.mu.Lock()
		v, err := fn(r)
		a.mu.Unlock()
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// Run drives the live battle one step per rules.Step until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	step := a.engine.Rules().Step
	a.mu.Unlock()

	t := time.NewTicker(step)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			a.tick()
		}
	}
}

func (a *App) tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.engine.Running() {
		return
	}
	if _, err := a.engine.Tick(); err != nil {
		jsonlog.Error(a.logger, "auto_tick_failed", map[string]any{"error": err.Error()})
	}
}

func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()
	body := map[string]any{
		"error": err.Error(),
		"code":  code,
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Metadata) > 0 {
		body["metadata"] = ae.Metadata
	}
	if status >= http.StatusInternalServerError {
		jsonlog.Error(a.logger, "request_failed", map[string]any{
			"request_id": httpmw.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.New(apperr.CodeBadRequest, "request body required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeBadRequest, "decode request", err)
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
