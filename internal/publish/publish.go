package publish

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is the minimal event-publishing seam the controller notifies through.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close() error
}

// ActivationChanged is published whenever an activation reconcile deactivated or
// blocked plugins.
type ActivationChanged struct {
	Namespace   string              `json:"namespace"`
	Activation  string              `json:"activation"`
	Scope       string              `json:"scope"`
	Deactivated []DeactivatedPlugin `json:"deactivated,omitempty"`
	Blocked     []BlockedPlugin     `json:"blocked,omitempty"`
}

type DeactivatedPlugin struct {
	Plugin string `json:"plugin"`
	Reason string `json:"reason"`
}

type BlockedPlugin struct {
	Plugin      string   `json:"plugin"`
	Unsatisfied []string `json:"unsatisfied,omitempty"`
}

// Subject returns "plugins.<namespace>.<activation>.changed".
func (e ActivationChanged) Subject() string {
	return fmt.Sprintf("plugins.%s.%s.changed", e.Namespace, e.Activation)
}

// PublishActivationChanged encodes e as JSON and publishes it on e.Subject().
func PublishActivationChanged(ctx context.Context, p Publisher, e ActivationChanged) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode activation event: %w", err)
	}
	if err := p.Publish(ctx, e.Subject(), payload); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}
	return nil
}

type noopPublisher struct{}

// NewNoop returns a Publisher that drops every message.
func NewNoop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (noopPublisher) Close() error { return nil }
