package types

import "time"

// EventType names a lifecycle change published to the message broker.
type EventType string

// Supported event types.
const (
	EventUserCreated       EventType = "user.created"
	EventUserDeleted       EventType = "user.deleted"
	EventCollectionCreated EventType = "collection.created"
	EventCollectionUpdated EventType = "collection.updated"
	EventCollectionDeleted EventType = "collection.deleted"
)

// Broker channels events are published on.
const (
	ChannelUserEvents       = "user-events"
	ChannelCollectionEvents = "collection-events"
)

// Channel returns the broker channel the event type is published on.
func (t EventType) Channel() string {
	switch t {
	case EventUserCreated, EventUserDeleted:
		return ChannelUserEvents
	default:
		return ChannelCollectionEvents
	}
}

// Event is the JSON payload published for user and collection changes.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	UserID         int       `json:"user_id,omitempty"`
	Username       string    `json:"username,omitempty"`
	CollectionUUID string    `json:"collection_uuid,omitempty"`
}
