package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultScheduleChannel is the pub/sub channel carrying schedule versions.
const DefaultScheduleChannel = "rewards:commission-schedule"

// ScheduleNotifier broadcasts commission schedule versions over Redis pub/sub.
type ScheduleNotifier struct {
	client  goredis.UniversalClient
	channel string
	logger  *slog.Logger
}

func NewScheduleNotifier(client goredis.UniversalClient, channel string, logger *slog.Logger) *ScheduleNotifier {
	if channel == "" {
		channel = DefaultScheduleChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleNotifier{client: client, channel: channel, logger: logger}
}

var _ portsrepo.ScheduleChangePublisher = (*ScheduleNotifier)(nil)

// PublishScheduleVersion sends version to every subscriber.
func (n *ScheduleNotifier) PublishScheduleVersion(ctx context.Context, version int64) error {
	if err := n.client.Publish(ctx, n.channel, strconv.FormatInt(version, 10)).Err(); err != nil {
		return fmt.Errorf("publish schedule version %d: %w", version, err)
	}
	return nil
}

// Listen calls onVersion for every version announced until ctx is done.
// Malformed payloads are logged and dropped.
func (n *ScheduleNotifier) Listen(ctx context.Context, onVersion func(ctx context.Context, version int64)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", n.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			version, err := ParseScheduleVersion(msg.Payload)
			if err != nil {
				n.logger.Warn("Dropping malformed schedule notification", slog.String("payload", msg.Payload), slog.String("error", err.Error()))
				continue
			}
			onVersion(ctx, version)
		}
	}
}

// ParseScheduleVersion decodes a notification payload.
func ParseScheduleVersion(payload string) (int64, error) {
	version, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule version %q: %w", payload, err)
	}
	if version < 0 {
		return 0, fmt.Errorf("invalid schedule version %q: negative", payload)
	}
	return version, nil
}
