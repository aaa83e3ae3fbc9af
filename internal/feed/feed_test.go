package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mousewarriors/SEIM-Project/internal/live"
	"github.com/Mousewarriors/SEIM-Project/internal/model"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

// stubSource replays one canned batch per Fetch call and then empties out.
type stubSource struct {
	mu      sync.Mutex
	batches [][]model.Event
	errs    []error
	calls   int
}

func (s *stubSource) Fetch(_ context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.batches) {
		return s.batches[i], nil
	}
	return nil, nil
}

func (s *stubSource) Close() error { return nil }

func (s *stubSource) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sshFailRule() model.Rule {
	return model.Rule{
		ID:       "rule-ssh",
		Name:     "SSH Failures",
		Severity: model.SeverityHigh,
		Field:    "event.action",
		Operator: model.OpContains,
		Value:    "fail",
		Enabled:  true,
	}
}

func feedEvent(ts, host, action string) model.Event {
	return model.Event{
		"@timestamp": ts,
		"host":       map[string]interface{}{"name": host},
		"event":      map[string]interface{}{"action": action},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestSchedulerEvaluatesAndPersists(t *testing.T) {
	engine := live.NewEngine(live.DefaultConfig(), slog.Default())
	_, err := engine.AddRule(sshFailRule())
	require.NoError(t, err)

	src := &stubSource{batches: [][]model.Event{
		{feedEvent("2026-01-01T00:00:00Z", "web-01", "ssh_login_failed")},
	}}
	st := store.NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := NewScheduler(SchedulerConfig{Interval: 10 * time.Millisecond}, src, engine, st, slog.Default())
	sched.Start(ctx)

	waitFor(t, func() bool { return len(engine.Alerts()) == 1 })

	cancel()
	sched.Wait()

	persisted, err := st.LoadAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "rule-ssh", persisted[0].RuleID)
}

func TestSchedulerSurvivesFailedFetch(t *testing.T) {
	engine := live.NewEngine(live.DefaultConfig(), slog.Default())
	_, err := engine.AddRule(sshFailRule())
	require.NoError(t, err)

	src := &stubSource{
		errs: []error{errors.New("upstream down")},
		batches: [][]model.Event{
			nil,
			{feedEvent("2026-01-01T00:00:01Z", "web-02", "ssh_login_failed")},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := NewScheduler(SchedulerConfig{Interval: 10 * time.Millisecond}, src, engine, store.NewMemoryStore(), slog.Default())
	sched.Start(ctx)

	// First cycle fails, second succeeds.
	waitFor(t, func() bool { return len(engine.Alerts()) == 1 })
	assert.GreaterOrEqual(t, src.fetches(), 2)

	cancel()
	sched.Wait()
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	engine := live.NewEngine(live.DefaultConfig(), slog.Default())
	src := &stubSource{}

	ctx, cancel := context.WithCancel(context.Background())
	sched := NewScheduler(SchedulerConfig{Interval: 5 * time.Millisecond}, src, engine, store.NewMemoryStore(), slog.Default())
	sched.Start(ctx)

	waitFor(t, func() bool { return src.fetches() >= 2 })
	cancel()
	sched.Wait()

	n := src.fetches()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, src.fetches())
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"@timestamp":"2026-01-01T00:00:00Z","host":{"name":"web-01"},"event":{"action":"ssh_login_failed"}}]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, srv.Client())
	events, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "web-01", events[0].HostName())
	assert.Equal(t, "ssh_login_failed", events[0].EventAction())
}

func TestHTTPSourceNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, srv.Client())
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSourceBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, srv.Client())
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}
