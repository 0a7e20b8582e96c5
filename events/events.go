// Package events publishes wallet activity to NATS so that other services
// (a launchpad backend, an order book) learn about broadcasts without
// polling the explorer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject broadcasts are published on.
const DefaultSubject = "doge.wallet.tx.broadcast"

// TxBroadcast is emitted once a transaction has been accepted by the relay.
// Amounts are koinu.
type TxBroadcast struct {
	Network   string   `json:"network"`
	TxID      string   `json:"txid"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Amount    uint64   `json:"amount"`
	Fee       uint64   `json:"fee"`
	Change    uint64   `json:"change"`
	Inputs    []string `json:"inputs"` // spent outpoints, "txid:vout"
	Timestamp int64    `json:"timestamp"`
}

// Publisher is the subset of *nats.Conn the emitter needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Emitter publishes TxBroadcast events as JSON.
type Emitter struct {
	pub     Publisher
	subject string
	now     func() time.Time
}

// NewEmitter returns an Emitter on subject, or DefaultSubject when empty.
func NewEmitter(pub Publisher, subject string) *Emitter {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Emitter{pub: pub, subject: subject, now: time.Now}
}

// NotifyBroadcast stamps ev if needed and publishes it. The context is
// accepted for symmetry with other notifiers; core NATS publish does not
// block on the server.
func (e *Emitter) NotifyBroadcast(_ context.Context, ev *TxBroadcast) error {
	if ev == nil {
		return fmt.Errorf("events: nil event")
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = e.now().UTC().Unix()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: encode: %w", err)
	}
	if err := e.pub.Publish(e.subject, data); err != nil {
		return fmt.Errorf("events: publish %s: %w", e.subject, err)
	}
	return nil
}

// Connect dials a NATS server with reconnects and logs connection changes.
// An empty url means nats.DefaultURL.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		url = nats.DefaultURL
	}
	return nats.Connect(url,
		nats.Name("dogewallet"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("NATS connection closed")
		}),
	)
}
