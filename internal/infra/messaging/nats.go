// Package messaging delivers table-change notifications over NATS. The
// database publishes one message per mutated row; the dashboard folds those
// into its cached stats instead of refetching everything on every change.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/infra/resilience"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ChangeSubject is the wildcard subject carrying row-level change events.
// Concrete subjects look like "tables.profiles.changed".
const ChangeSubject = "tables.*.changed"

type NATSListener struct {
	conn     *nats.Conn
	sub      *nats.Subscription
	bulkhead *resilience.Bulkhead
	logger   *zap.Logger
}

// NewNATSListener connects to NATS, retrying with backoff. Connection setup
// is the one place retries are safe here; change events themselves are
// fire-and-forget and a missed one only delays the next full refresh.
func NewNATSListener(ctx context.Context, url string, retry resilience.RetryConfig, maxConcurrency int, logger *zap.Logger) (*NATSListener, error) {
	var conn *nats.Conn
	err := resilience.RetryWithBackoff(ctx, retry, func() error {
		var connErr error
		conn, connErr = nats.Connect(url)
		return connErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", url))
	return &NATSListener{
		conn:     conn,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		logger:   logger,
	}, nil
}

// Subscribe starts delivering table changes to handler. Handlers run on
// their own goroutines, capped by the bulkhead so a burst of row changes
// cannot spawn unbounded work.
func (l *NATSListener) Subscribe(ctx context.Context, handler func(domain.TableChange)) error {
	sub, err := l.conn.Subscribe(ChangeSubject, func(msg *nats.Msg) {
		var change domain.TableChange
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			l.logger.Error("failed to unmarshal table change", zap.Error(err), zap.String("subject", msg.Subject))
			return
		}
		if change.Table == "" {
			change.Table = tableFromSubject(msg.Subject)
		}

		if err := l.bulkhead.Acquire(ctx); err != nil {
			l.logger.Warn("change dropped, context done", zap.String("table", change.Table))
			return
		}
		go func() {
			defer l.bulkhead.Release()
			handler(change)
		}()
	})
	if err != nil {
		l.logger.Error("failed to subscribe to table changes", zap.Error(err))
		return fmt.Errorf("failed to subscribe to table changes: %w", err)
	}

	l.sub = sub
	l.logger.Info("subscribed to table change messages", zap.String("subject", ChangeSubject))
	return nil
}

// Close drains the subscription and closes the connection.
func (l *NATSListener) Close() {
	if l.sub != nil {
		if err := l.sub.Drain(); err != nil {
			l.logger.Warn("failed to drain subscription", zap.Error(err))
		}
	}
	if l.conn != nil {
		l.conn.Close()
		l.logger.Info("NATS connection closed")
	}
}

// tableFromSubject extracts the table token from "tables.<table>.changed".
func tableFromSubject(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) == 3 {
		return parts[1]
	}
	return ""
}
