package domain

import "time"

// TopicEntityActivity is the bus topic carrying EntityEvent payloads.
const TopicEntityActivity = "activity.entity"

// Action describes what happened to an entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// EntityEvent is published whenever a back-office record changes.
type EntityEvent struct {
	Entity  string    `json:"entity"`
	Action  Action    `json:"action"`
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}
