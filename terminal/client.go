package terminal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const defaultDialTimeout = 30 * time.Second

// Client dials the terminal's local API socket and exposes its order event
// stream as a Session. The protocol is the terminal's own: one JSON object
// per line, the client identifying itself with a numeric client ID on
// connect. Heartbeats and frame types we don't track are skipped.
type Client struct {
	Host     string
	Port     int
	ClientID int

	// DialTimeout bounds the TCP connect only; no timeout is applied to
	// the event stream itself.
	DialTimeout time.Duration
}

func (c *Client) Dial(ctx context.Context) (Session, error) {
	timeout := c.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
	if err != nil {
		return nil, fmt.Errorf("dial terminal: %w", err)
	}

	hello, err := json.Marshal(map[string]any{"client_id": c.ClientID})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Write(append(hello, '\n')); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send client id: %w", err)
	}

	return &wireSession{conn: conn}, nil
}

type wireSession struct {
	conn net.Conn
}

func (s *wireSession) Run(ctx context.Context, handle func(Event)) error {
	// Closing the connection is the only way to unblock the scanner when
	// the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-done:
		}
	}()

	sc := bufio.NewScanner(s.conn)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var frame map[string]any
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			return fmt.Errorf("bad frame: %w", err)
		}

		ev, ok := decodeFrame(frame)
		if !ok {
			continue
		}
		handle(ev)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

func (s *wireSession) Close() error {
	return s.conn.Close()
}

func decodeFrame(frame map[string]any) (Event, bool) {
	typ, _ := frame["type"].(string)
	switch strings.ToLower(typ) {
	case "order_status":
		return OrderStatusEvent{
			OrderID:      str(frame, "order_id"),
			Status:       str(frame, "status"),
			Filled:       num(frame, "filled"),
			Remaining:    num(frame, "remaining"),
			AvgFillPrice: num(frame, "avg_fill_price"),
			Frame:        frame,
		}, true
	case "execution":
		return ExecutionEvent{
			OrderID:  str(frame, "order_id"),
			ExecID:   str(frame, "exec_id"),
			Symbol:   str(frame, "symbol"),
			Side:     str(frame, "side"),
			Quantity: num(frame, "quantity"),
			Price:    num(frame, "price"),
			Frame:    frame,
		}, true
	case "open_order":
		return OpenOrderEvent{
			OrderID:    str(frame, "order_id"),
			Symbol:     str(frame, "symbol"),
			Action:     str(frame, "action"),
			Quantity:   num(frame, "quantity"),
			OrderType:  str(frame, "order_type"),
			LimitPrice: num(frame, "limit_price"),
			Frame:      frame,
		}, true
	default:
		// HEARTBEAT and anything unrecognized.
		return nil, false
	}
}

func str(m map[string]any, k string) string {
	v, _ := m[k].(string)
	return v
}

func num(m map[string]any, k string) float64 {
	v, _ := m[k].(float64)
	return v
}
