package provider

import (
	"fmt"

	"github.com/fitshare/auth-service/internal/domain"
)

// Registry resolves provider names to clients.
type Registry struct {
	clients map[domain.ProviderName]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[domain.ProviderName]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// Get returns the client registered under name.
func (r *Registry) Get(name domain.ProviderName) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
	return c, nil
}
