package terminal

import "context"

// Session is one connected lifetime to the terminal's API. Run blocks,
// invoking handle for each inbound event in delivery order, until the
// stream ends, the connection fails, or ctx is cancelled. A session is
// owned by a single goroutine and is not reused after Run returns.
type Session interface {
	Run(ctx context.Context, handle func(Event)) error
	Close() error
}

// Dialer opens a new Session against the terminal.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}
