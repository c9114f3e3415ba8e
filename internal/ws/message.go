package ws

import (
	"time"

	"birdsos/internal/hardware/gpio"
	"birdsos/internal/models"
)

// Broadcast topics. Clients subscribe to exactly one topic per connection.
const (
	TopicSystemStatus  = "system-status"
	TopicGPIO          = "gpio-updates"
	TopicNotifications = "notifications"
)

// Message envelope types.
const (
	TypeStatus       = "status"
	TypeGPIO         = "gpio_update"
	TypeSession      = "session"
	TypeNotification = "notification"
)

// ValidTopic reports whether clients may subscribe to the topic.
func ValidTopic(topic string) bool {
	switch topic {
	case TopicSystemStatus, TopicGPIO, TopicNotifications:
		return true
	}
	return false
}

// Message is the envelope for every hub broadcast.
type Message struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Notification is a human-readable event for the notifications topic.
type Notification struct {
	Level   string      `json:"level"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewStatusMessage wraps a camera status snapshot.
func NewStatusMessage(update models.StatusUpdate) Message {
	return Message{
		Type:      TypeStatus,
		Topic:     TopicSystemStatus,
		Timestamp: time.Now(),
		Data:      update,
	}
}

// NewGPIOMessage wraps a pin state change.
func NewGPIOMessage(event gpio.PinEvent) Message {
	return Message{
		Type:      TypeGPIO,
		Topic:     TopicGPIO,
		Timestamp: time.Now(),
		Data:      event,
	}
}

// NewSessionMessage wraps a finalized or failed recording session.
func NewSessionMessage(info models.SessionInfo) Message {
	return Message{
		Type:      TypeSession,
		Topic:     TopicNotifications,
		Timestamp: time.Now(),
		Data:      info,
	}
}

// NewNotification wraps a free-form event such as a storage warning.
func NewNotification(level, text string, data interface{}) Message {
	return Message{
		Type:      TypeNotification,
		Topic:     TopicNotifications,
		Timestamp: time.Now(),
		Data: Notification{
			Level:   level,
			Message: text,
			Data:    data,
		},
	}
}

// StatusRelay forwards status snapshots onto the system-status topic. It
// satisfies status.Sink.
type StatusRelay struct {
	hub *Hub
}

func NewStatusRelay(hub *Hub) *StatusRelay {
	return &StatusRelay{hub: hub}
}

func (r *StatusRelay) PublishStatus(update models.StatusUpdate) {
	r.hub.Broadcast(TopicSystemStatus, NewStatusMessage(update))
}
