// Package daemon provides the long-running background planner service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/store"
)

// SourceFunc produces the request to re-plan, typically by reading the
// portfolio file.
type SourceFunc func() (pipeline.Request, error)

// Config controls the daemon runtime behavior.
type Config struct {
	Source       SourceFunc
	Portfolio    string // shown in status only
	Schedule     string // cron spec
	Addr         string
	EventsBuffer int
	History      *store.History // optional
	Logger       *logrus.Logger
}

// Snapshot is a compact plan state for status/event payloads.
type Snapshot struct {
	At            time.Time       `json:"at"`
	Strategy      string          `json:"strategy"`
	FellBack      bool            `json:"fell_back,omitempty"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Debts         int             `json:"debts"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	Months        model.Months    `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	PayoffDate    time.Time       `json:"payoff_date"`
	NeverDebts    []string        `json:"never_debts,omitempty"`
}

// Delta captures snapshot changes between plans.
type Delta struct {
	Debts         int             `json:"debts"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Months        int             `json:"months"`
	DebtFree      *bool           `json:"debt_free,omitempty"` // set when it flips
}

func (d Delta) isZero() bool {
	return d.Debts == 0 &&
		d.TotalBalance.IsZero() &&
		d.TotalInterest.IsZero() &&
		d.Months == 0 &&
		d.DebtFree == nil
}

// Event is emitted whenever the plan changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPlanAt      time.Time `json:"last_plan_at"`
	Schedule        string    `json:"schedule"`
	PlanCount       int64     `json:"plan_count"`
	Portfolio       string    `json:"portfolio,omitempty"`
	Summary         Snapshot  `json:"summary"`
	Warnings        []string  `json:"warnings,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *logrus.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPlanAt  time.Time
	planCount   int64
	lastError   string
	warnings    []string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router builds the HTTP routes.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/v1/plan", s.handlePlan).Methods(http.MethodPost)
	r.HandleFunc("/v1/score", s.handleScore).Methods(http.MethodPost)
	return r
}

// Run starts HTTP endpoints and scheduled re-planning until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, s.planOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.planOnce()

	c.Start()
	defer c.Stop()

	s.log.WithFields(logrus.Fields{
		"addr":     s.cfg.Addr,
		"schedule": s.cfg.Schedule,
	}).Info("payoff daemon started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) planOnce() {
	res, err := s.plan()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPlanAt = now
		s.planCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("re-plan failed")
		return
	}

	snap := snapshotFromResult(res, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPlanAt = now
	s.planCount++
	s.lastError = ""
	s.warnings = res.Warnings()

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "plan_changed",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.WithFields(logrus.Fields{
			"event":    ev.Type,
			"months":   snap.Months.String(),
			"interest": snap.TotalInterest.StringFixed(2),
		}).Info("plan updated")
		s.publishEvent(ev)
	}
}

func (s *Service) plan() (*pipeline.Result, error) {
	if s.cfg.Source == nil {
		return nil, errors.New("no plan source configured")
	}
	req, err := s.cfg.Source()
	if err != nil {
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}
	res, err := pipeline.Run(req)
	if err != nil {
		return nil, err
	}

	if s.cfg.History != nil {
		rec, err := pipeline.Record(s.cfg.History, res, "daemon")
		if err != nil {
			s.log.WithError(err).Warn("recording run failed")
		} else {
			s.log.WithFields(logrus.Fields{
				"run":       rec.Run.ID,
				"unchanged": rec.Unchanged(),
			}).Debug("run recorded")
		}
	}
	return res, nil
}

func snapshotFromResult(res *pipeline.Result, at time.Time) Snapshot {
	total := decimal.Zero
	for _, d := range res.Request.Debts {
		total = total.Add(d.Balance)
	}
	return Snapshot{
		At:            at,
		Strategy:      res.Summary.Strategy,
		FellBack:      res.Ordering.FellBack,
		MonthlyBudget: res.Summary.MonthlyBudget,
		Debts:         len(res.Request.Debts),
		TotalBalance:  total,
		Months:        res.Summary.Months,
		TotalInterest: res.Summary.TotalInterest,
		PayoffDate:    res.Summary.PayoffDate,
		NeverDebts:    res.Summary.NeverDebts,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Debts:         curr.Debts - prev.Debts,
		TotalBalance:  curr.TotalBalance.Sub(prev.TotalBalance),
		TotalInterest: curr.TotalInterest.Sub(prev.TotalInterest),
	}
	prevFree, currFree := !prev.Months.IsNever(), !curr.Months.IsNever()
	switch {
	case prevFree && currFree:
		d.Months = int(curr.Months - prev.Months)
	case prevFree != currFree:
		d.DebtFree = &currFree
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPlanAt:      s.lastPlanAt,
		Schedule:        s.cfg.Schedule,
		PlanCount:       s.planCount,
		Portfolio:       s.cfg.Portfolio,
		Summary:         s.snapshot,
		Warnings:        s.warnings,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
