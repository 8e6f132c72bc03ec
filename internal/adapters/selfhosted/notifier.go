package selfhosted

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
)

// eventsChannel is the Pub/Sub channel carrying session-change events, so
// every process serving the same user base observes sign-ins and
// sign-outs as they happen.
const eventsChannel = "auth:session-events"

// notifier publishes and subscribes session events over Redis Pub/Sub.
type notifier struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func (n *notifier) publish(ctx context.Context, ev domainauth.SessionEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		n.logger.Warn("encode session event failed", "error", err)
		return
	}
	// Best effort: a failed publish never fails the triggering operation.
	if err := n.client.Publish(ctx, eventsChannel, data).Err(); err != nil {
		n.logger.Warn("publish session event failed", "error", err)
	}
}

// subscribe returns a channel of session events that closes when ctx is
// canceled. Malformed payloads are logged and skipped.
func (n *notifier) subscribe(ctx context.Context) (<-chan domainauth.SessionEvent, error) {
	sub := n.client.Subscribe(ctx, eventsChannel)
	// Confirm the subscription before handing back the channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe session events: %w", err)
	}

	out := make(chan domainauth.SessionEvent)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				n.logger.Warn("close session event subscription failed", "error", err)
			}
		}()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domainauth.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					n.logger.Warn("decode session event failed", "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
