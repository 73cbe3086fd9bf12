package pubsub

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
)

// Announce publishes an EntityActivity event for a record changed by the
// user in ctx. Failures are logged, not returned. A nil publisher is a no-op.
func Announce(ctx context.Context, p Publisher, entity string, action domain.Action, id, label string) {
	if p == nil {
		return
	}
	actorID := domain.ActorID(ctx)
	ev := domain.EntityEvent{
		Entity:  entity,
		Action:  action,
		ID:      id,
		Label:   label,
		ActorID: actorID,
		At:      time.Now().UTC(),
	}
	if err := Publish(ctx, p, EntityActivity, actorID, ev); err != nil {
		middleware.FromContext(ctx).Warn("Failed to publish activity event",
			slog.String("entity", entity),
			slog.String("action", string(action)),
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}
