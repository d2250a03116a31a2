// supervisor/adapter.go
package supervisor

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/termwatch/activity"
	"github.com/rustyeddy/termwatch/terminal"
)

// adapt maps one terminal event to the (type, description, raw payload)
// triple recorded in the activity log. Every event yields exactly one
// record; nothing is filtered or deduplicated, so concurrent variants for
// the same underlying trade each land as their own row.
func adapt(ev terminal.Event) (activity.Type, string, map[string]any) {
	switch e := ev.(type) {
	case terminal.OrderStatusEvent:
		return activity.OrderStatus,
			fmt.Sprintf("Order status: %s", e.Status),
			rawPayload(e.Frame, map[string]any{
				"order_id":       e.OrderID,
				"status":         e.Status,
				"filled":         e.Filled,
				"remaining":      e.Remaining,
				"avg_fill_price": e.AvgFillPrice,
			})

	case terminal.ExecutionEvent:
		return activity.Execution,
			fmt.Sprintf("Trade executed: %s %s @ %s", e.Side, ftoa(e.Quantity), ftoa(e.Price)),
			rawPayload(e.Frame, map[string]any{
				"order_id": e.OrderID,
				"exec_id":  e.ExecID,
				"symbol":   e.Symbol,
				"side":     e.Side,
				"quantity": e.Quantity,
				"price":    e.Price,
			})

	case terminal.OpenOrderEvent:
		return activity.OpenOrder,
			fmt.Sprintf("New order detected: %s %s", e.Action, ftoa(e.Quantity)),
			rawPayload(e.Frame, map[string]any{
				"order_id":    e.OrderID,
				"symbol":      e.Symbol,
				"action":      e.Action,
				"quantity":    e.Quantity,
				"order_type":  e.OrderType,
				"limit_price": e.LimitPrice,
			})

	default:
		// The variant set is closed; a new variant is a programming error
		// caught here rather than silently dropped.
		panic(fmt.Sprintf("unhandled terminal event %T", ev))
	}
}

// rawPayload prefers the wire frame the session decoded; synthetic events
// fall back to a shallow field map.
func rawPayload(frame, fields map[string]any) map[string]any {
	if frame != nil {
		return frame
	}
	return fields
}

// ftoa renders quantities and prices without a forced decimal point, so
// 100 reads as "100" and 50.25 as "50.25".
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
