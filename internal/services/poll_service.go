package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pollscope/internal/dataprocessing"
	"pollscope/internal/fetcher"
	"pollscope/internal/infrastructure"
	"pollscope/pkg/contracts/domain"
)

// PollService owns the current poll snapshot and refreshes it from the
// configured source. Readers always see a complete snapshot; a refresh
// replaces it as a whole or not at all.
type PollService struct {
	fetcher fetcher.Fetcher
	origin  string
	timeout time.Duration
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time

	current atomic.Pointer[domain.Snapshot]

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	inFlight    int
	lastError   string
	lastAttempt time.Time

	listenersMu sync.RWMutex
	listeners   []func(*domain.Snapshot)
}

// PollServiceOption configures a PollService
type PollServiceOption func(*PollService)

// WithRefreshTimeout bounds every fetch. Zero means no timeout.
func WithRefreshTimeout(d time.Duration) PollServiceOption {
	return func(s *PollService) { s.timeout = d }
}

// WithOrigin sets the origin recorded on snapshots
func WithOrigin(origin string) PollServiceOption {
	return func(s *PollService) { s.origin = origin }
}

// WithMetrics records refresh outcomes
func WithMetrics(m *infrastructure.BusinessMetrics) PollServiceOption {
	return func(s *PollService) { s.metrics = m }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) PollServiceOption {
	return func(s *PollService) { s.now = now }
}

// NewPollService creates a poll service reading from f
func NewPollService(f fetcher.Fetcher, logger *slog.Logger, opts ...PollServiceOption) *PollService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PollService{
		fetcher: f,
		origin:  f.Name(),
		logger:  logger.With(slog.String("component", "poll_service")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshStatus reports the state of the last refreshes
type RefreshStatus struct {
	Loaded       bool       `json:"loaded"`
	SnapshotID   string     `json:"snapshot_id,omitempty"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
	LastAttempt  *time.Time `json:"last_attempt,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	Refreshing   bool       `json:"refreshing"`
	RowsAccepted int        `json:"rows_accepted"`
	SourceCount  int        `json:"source_count"`
	Origin       string     `json:"origin"`
}

// OnRefresh registers fn to run after every published snapshot
func (s *PollService) OnRefresh(fn func(*domain.Snapshot)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh fetches the source table and publishes a new snapshot. A call
// made while another refresh is in flight cancels the older one, which
// then returns ErrSuperseded without publishing. On failure the previous
// snapshot stays current.
func (s *PollService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	var (
		fetchCtx context.Context
		cancel   context.CancelFunc
	)
	if s.timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.inFlight++
	s.lastAttempt = s.now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		if s.generation == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	logger := s.logger
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	start := time.Now()
	logger.Debug("Refreshing poll data", slog.String("fetcher", s.fetcher.Name()), slog.Uint64("generation", gen))

	var (
		dataset  *domain.PollDataset
		accepted int
	)
	raw, err := s.fetcher.Fetch(fetchCtx)
	if err == nil {
		dataset, accepted = dataprocessing.Ingest(raw)
	}
	elapsed := time.Since(start)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.metrics.RecordRefresh(ctx, infrastructure.OutcomeSuperseded, elapsed, 0)
		logger.Debug("Refresh superseded", slog.Uint64("generation", gen))
		return nil, ErrSuperseded
	}
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		s.metrics.RecordRefresh(ctx, infrastructure.OutcomeError, elapsed, 0)
		infrastructure.RecordError(ctx, err)
		logger.Error("Refresh failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed))
		return nil, fmt.Errorf("refresh from %s: %w", s.fetcher.Name(), err)
	}

	snap := &domain.Snapshot{
		ID:           uuid.New().String(),
		Dataset:      dataset,
		LastUpdated:  s.now(),
		RowsAccepted: accepted,
		Origin:       s.origin,
	}
	s.current.Store(snap)
	s.lastError = ""
	s.mu.Unlock()

	s.metrics.RecordRefresh(ctx, infrastructure.OutcomeSuccess, elapsed, accepted)
	logger.Info("Poll data refreshed",
		slog.String("snapshot_id", snap.ID),
		slog.Int("rows_read", len(raw)),
		slog.Int("rows_accepted", accepted),
		slog.Int("sources", dataset.Len()),
		slog.Duration("duration", elapsed))

	if dataset.IsEmpty() {
		logger.Warn("Poll sheet has no usable rows", slog.Int("rows_read", len(raw)))
	}

	s.notify(snap)
	return snap, nil
}

func (s *PollService) notify(snap *domain.Snapshot) {
	s.listenersMu.RLock()
	listeners := make([]func(*domain.Snapshot), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Status returns the current refresh state
func (s *PollService) Status() RefreshStatus {
	s.mu.Lock()
	st := RefreshStatus{
		Refreshing: s.inFlight > 0,
		LastError:  s.lastError,
		Origin:     s.origin,
	}
	if !s.lastAttempt.IsZero() {
		t := s.lastAttempt
		st.LastAttempt = &t
	}
	s.mu.Unlock()

	if snap := s.current.Load(); snap != nil {
		t := snap.LastUpdated
		st.Loaded = true
		st.SnapshotID = snap.ID
		st.LastUpdated = &t
		st.RowsAccepted = snap.RowsAccepted
		st.SourceCount = snap.Dataset.Len()
	}
	return st
}

// Loaded reports whether a snapshot has been published
func (s *PollService) Loaded() bool {
	return s.current.Load() != nil
}

// Snapshot returns the current snapshot
func (s *PollService) Snapshot() (*domain.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

func (s *PollService) dataset() (*domain.PollDataset, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Dataset, nil
}

func (s *PollService) sourceDataset(source string) (*domain.PollDataset, *domain.SourceSeries, error) {
	ds, err := s.dataset()
	if err != nil {
		return nil, nil, err
	}
	series, ok := ds.Source(source)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}
	return ds, series, nil
}
