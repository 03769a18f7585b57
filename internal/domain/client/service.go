package client

import "context"

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	ListClients(ctx context.Context) ([]ClientResponse, error)
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	UpdateClient(ctx context.Context, req UpdateClientRequest) (ClientResponse, error)

	// DeleteClient detaches projects, activities and screenshots from the client, then removes it
	DeleteClient(ctx context.Context, id string) error

	// GetClientTime sums tracked time per employee for the client's activities
	GetClientTime(ctx context.Context, id string) (TimeSummaryResponse, error)
}
