// terminal/events.go
package terminal

// Event is one order-lifecycle notification delivered by an open session.
// The variant set is closed; the supervisor matches it exhaustively.
type Event interface {
	isEvent()
}

// OrderStatusEvent reports a status change on an existing order.
type OrderStatusEvent struct {
	OrderID      string
	Status       string
	Filled       float64
	Remaining    float64
	AvgFillPrice float64

	// Frame is the decoded wire frame when the transport kept it, nil for
	// synthetic events.
	Frame map[string]any
}

// ExecutionEvent reports a fill.
type ExecutionEvent struct {
	OrderID  string
	ExecID   string
	Symbol   string
	Side     string
	Quantity float64
	Price    float64

	Frame map[string]any
}

// OpenOrderEvent reports an order newly visible on the terminal.
type OpenOrderEvent struct {
	OrderID    string
	Symbol     string
	Action     string
	Quantity   float64
	OrderType  string
	LimitPrice float64

	Frame map[string]any
}

func (OrderStatusEvent) isEvent() {}
func (ExecutionEvent) isEvent()   {}
func (OpenOrderEvent) isEvent()   {}
