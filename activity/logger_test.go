package activity

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkingNotifier inspects the document store from inside Send, so a test
// can prove both stores were committed before delivery was attempted.
type checkingNotifier struct {
	doc  *DocumentStore
	err  error
	seen []int // document length observed on each Send
}

func (n *checkingNotifier) Send(ctx context.Context, text string) error {
	records, _ := n.doc.Load()
	n.seen = append(n.seen, len(records))
	return n.err
}

func newTestLogger(t *testing.T, notifier Notifier) (*Logger, string, *DocumentStore) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "activity.db")
	docPath := filepath.Join(dir, "activity.json")

	db, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	doc := NewDocumentStore(docPath)

	l := NewLogger(db, doc, notifier)
	l.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return l, dbPath, doc
}

func countRows(t *testing.T, dbPath string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM activity`).Scan(&n))
	return n
}

func TestLogWritesBothStores(t *testing.T) {
	t.Parallel()

	l, dbPath, doc := newTestLogger(t, nil)

	require.NoError(t, l.Log(context.Background(), OrderStatus, "Order status: Filled", map[string]any{"status": "Filled"}))
	require.NoError(t, l.Log(context.Background(), Execution, "Trade executed: BUY 100 @ 50.25", map[string]any{"side": "BUY"}))

	assert.Equal(t, 2, countRows(t, dbPath))

	records, err := doc.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, OrderStatus, records[0].Type)
	assert.Equal(t, Execution, records[1].Type)
}

func TestLogNotifiesAfterBothStoresCommit(t *testing.T) {
	t.Parallel()

	n := &checkingNotifier{}
	l, _, doc := newTestLogger(t, n)
	n.doc = doc

	require.NoError(t, l.Log(context.Background(), OpenOrder, "New order detected: BUY 10", map[string]any{}))
	require.NoError(t, l.Log(context.Background(), OrderStatus, "Order status: Submitted", map[string]any{}))

	// Each delivery saw the record it announced already on disk.
	assert.Equal(t, []int{1, 2}, n.seen)
}

func TestLogNotificationFailureDoesNotPropagate(t *testing.T) {
	t.Parallel()

	n := &checkingNotifier{err: errors.New("channel down")}
	l, dbPath, doc := newTestLogger(t, n)
	n.doc = doc

	err := l.Log(context.Background(), Error, "Failed to connect or monitor: dial refused", map[string]any{})
	assert.NoError(t, err)

	// The failed delivery removed nothing.
	assert.Equal(t, 1, countRows(t, dbPath))
	records, err := doc.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Error, records[0].Type)
}
