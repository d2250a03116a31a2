package supervisor

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/termwatch/activity"
	"github.com/rustyeddy/termwatch/terminal"
)

// scriptedPoller replays a fixed readiness sequence, then calls done so the
// test can stop the supervisor once the script is spent.
type scriptedPoller struct {
	mu     sync.Mutex
	script []bool
	calls  int
	done   func()
}

func (p *scriptedPoller) Ready(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls >= len(p.script) {
		if p.done != nil {
			p.done()
		}
		return false
	}
	v := p.script[p.calls]
	p.calls++
	return v
}

type fakeSession struct {
	events []terminal.Event
	err    error
}

func (s *fakeSession) Run(ctx context.Context, handle func(terminal.Event)) error {
	for _, ev := range s.events {
		handle(ev)
	}
	return s.err
}

func (s *fakeSession) Close() error { return nil }

type dialResult struct {
	sess terminal.Session
	err  error
}

// scriptedDialer hands out one result per Dial, counting attempts.
type scriptedDialer struct {
	mu      sync.Mutex
	results []dialResult
	dials   int
}

func (d *scriptedDialer) Dial(ctx context.Context) (terminal.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dials >= len(d.results) {
		return nil, errors.New("unexpected dial")
	}
	r := d.results[d.dials]
	d.dials++
	return r.sess, r.err
}

type harness struct {
	sup    *Supervisor
	dbPath string
	doc    *activity.DocumentStore
	dialer *scriptedDialer
}

func newHarness(t *testing.T, poller Readiness, dialer *scriptedDialer, pollInterval, retryInterval time.Duration) *harness {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "activity.db")
	db, err := activity.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	doc := activity.NewDocumentStore(filepath.Join(dir, "activity.json"))

	logger := activity.NewLogger(db, doc, nil)
	sup := New(poller, dialer, logger, pollInterval, retryInterval)
	return &harness{sup: sup, dbPath: dbPath, doc: doc, dialer: dialer}
}

type row struct {
	eventType   string
	description string
}

func readRows(t *testing.T, dbPath string) []row {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT event_type, description FROM activity ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.eventType, &r.description))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	return got
}

// The full cycle from the readiness gate to the durable record: three
// not-ready polls, a failed open, then a session delivering one fill.
func TestSupervisorFullCycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := &scriptedPoller{
		script: []bool{false, false, false, true, true},
		done:   cancel,
	}
	dialer := &scriptedDialer{results: []dialResult{
		{err: errors.New("connection refused")},
		{sess: &fakeSession{events: []terminal.Event{
			terminal.ExecutionEvent{Side: "BUY", Quantity: 100, Price: 50.25},
		}}},
	}}

	h := newHarness(t, poller, dialer, time.Millisecond, time.Millisecond)
	h.sup.Run(ctx)

	got := readRows(t, h.dbPath)
	require.Len(t, got, 2)
	assert.Equal(t, "Error", got[0].eventType)
	assert.Equal(t, "Failed to connect or monitor: connection refused", got[0].description)
	assert.Equal(t, "Execution", got[1].eventType)
	assert.Equal(t, "Trade executed: BUY 100 @ 50.25", got[1].description)

	// The document store saw the same two records.
	records, err := h.doc.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, activity.Error, records[0].Type)
	assert.Equal(t, activity.Execution, records[1].Type)

	assert.Equal(t, 2, dialer.dials)

	st := h.sup.Status()
	assert.Equal(t, 1, st.SessionsOpened)
	assert.Equal(t, 1, st.ConnectFailures)
	assert.Equal(t, 1, st.EventsSeen)
}

// One dial per ready poll, one Error record per failed dial.
func TestSupervisorOneDialPerReadySignal(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := &scriptedPoller{
		script: []bool{true, false, true},
		done:   cancel,
	}
	dialer := &scriptedDialer{results: []dialResult{
		{err: errors.New("refused once")},
		{err: errors.New("refused twice")},
	}}

	h := newHarness(t, poller, dialer, time.Millisecond, time.Millisecond)
	h.sup.Run(ctx)

	assert.Equal(t, 2, dialer.dials)

	got := readRows(t, h.dbPath)
	require.Len(t, got, 2)
	assert.Equal(t, "Error", got[0].eventType)
	assert.Equal(t, "Error", got[1].eventType)
}

// A session that dies with an error is recovered: the failure is recorded
// and the loop returns to waiting rather than exiting.
func TestSupervisorRecordsSessionFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := &scriptedPoller{
		script: []bool{true},
		done:   cancel,
	}
	dialer := &scriptedDialer{results: []dialResult{
		{sess: &fakeSession{
			events: []terminal.Event{terminal.OrderStatusEvent{Status: "Submitted"}},
			err:    errors.New("stream reset"),
		}},
	}}

	h := newHarness(t, poller, dialer, time.Millisecond, time.Millisecond)
	h.sup.Run(ctx)

	got := readRows(t, h.dbPath)
	require.Len(t, got, 2)
	assert.Equal(t, "OrderStatus", got[0].eventType)
	assert.Equal(t, "Error", got[1].eventType)
	assert.Equal(t, "Failed to connect or monitor: stream reset", got[1].description)

	st := h.sup.Status()
	assert.Equal(t, Waiting, st.State)
	assert.Empty(t, st.SessionID)
}

// alwaysReady models a terminal process that stays up across failures.
type alwaysReady struct{}

func (alwaysReady) Ready(ctx context.Context) bool { return true }

// A broken session must wait out the retry interval before redialing a
// terminal that is still running, not spin on dials.
func TestSupervisorBacksOffAfterSessionError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make([]dialResult, 16)
	for i := range results {
		results[i] = dialResult{sess: &fakeSession{err: errors.New("stream reset")}}
	}
	dialer := &scriptedDialer{results: results}

	h := newHarness(t, alwaysReady{}, dialer, time.Millisecond, time.Second)

	doneCh := make(chan struct{})
	go func() {
		h.sup.Run(ctx)
		close(doneCh)
	}()

	// Well under one retry interval: the first session has failed and the
	// supervisor should still be sitting out the back-off.
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop on cancel")
	}

	assert.Equal(t, 1, dialer.dials)

	got := readRows(t, h.dbPath)
	require.Len(t, got, 1)
	assert.Equal(t, "Error", got[0].eventType)
	assert.Equal(t, "Failed to connect or monitor: stream reset", got[0].description)
}

func TestSupervisorStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poller := &scriptedPoller{script: []bool{false, false}}
	h := newHarness(t, poller, &scriptedDialer{}, time.Millisecond, time.Millisecond)

	doneCh := make(chan struct{})
	go func() {
		h.sup.Run(ctx)
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop on cancel")
	}
}
