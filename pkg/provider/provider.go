package provider

import (
	"context"
	"fmt"

	"outreach-backend/internal/outreach/domain"
)

// DeliveryProvider submits one outreach attempt on its channel and
// returns the provider-side delivery id. Delivery outcome may arrive
// later through the notification subscriber.
type DeliveryProvider interface {
	Submit(ctx context.Context, task *domain.OutreachTask) (string, error)
}

// Registry maps channels to their providers
type Registry struct {
	providers map[domain.Channel]DeliveryProvider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.Channel]DeliveryProvider)}
}

// Register binds a provider to a channel
func (r *Registry) Register(channel domain.Channel, p DeliveryProvider) {
	r.providers[channel] = p
}

// For returns the provider for a channel
func (r *Registry) For(channel domain.Channel) (DeliveryProvider, error) {
	p, ok := r.providers[channel]
	if !ok {
		return nil, fmt.Errorf("no provider registered for channel %s", channel)
	}
	return p, nil
}
