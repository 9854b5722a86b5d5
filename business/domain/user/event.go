package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const queueUsers = "queue_users"

// Event types published after a successful write.
const (
	EventCreated = "user.created"
	EventUpdated = "user.updated"
)

// Publisher is the broker the service announces changes on.
type Publisher interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, msg []byte) error
}

// Event is the message body published on the users queue.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Profiles   []string  `json:"profiles"`
	OccurredAt time.Time `json:"occurredAt"`
}

func publishEvent(ctx context.Context, p Publisher, eventType string, usr User) error {
	e := Event{
		Type:       eventType,
		UserID:     usr.ID,
		Email:      usr.Email,
		Profiles:   EncodeProfiles(usr.Profiles),
		OccurredAt: time.Now().UTC(),
	}

	bs, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := p.Publish(ctx, queueUsers, bs); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
