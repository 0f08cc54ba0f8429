package repositories

import "context"

// ScheduleChangePublisher announces that a new schedule version was stored so other
// replicas can reload their snapshot.
type ScheduleChangePublisher interface {
	PublishScheduleVersion(ctx context.Context, version int64) error
}
