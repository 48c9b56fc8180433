package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeTaskCreated   Type = "task_created"
	TypeTaskUpdated   Type = "task_updated"
	TypeTaskAssigned  Type = "task_assigned"
	TypeTaskCompleted Type = "task_completed"
	TypeBidPlaced     Type = "bid_placed"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelTask Channel = "task"
	ChannelBid  Channel = "bid"
)

var typeToChannel = map[Type]Channel{
	TypeTaskCreated:   ChannelTask,
	TypeTaskUpdated:   ChannelTask,
	TypeTaskAssigned:  ChannelTask,
	TypeTaskCompleted: ChannelTask,
	TypeBidPlaced:     ChannelBid,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
