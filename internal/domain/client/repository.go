package client

import "context"

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context) ([]Client, error)
	// ExistsByName matches case-insensitively, ignoring excludeID when set
	ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error)
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	Create(ctx context.Context, c Client) (Client, error)
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, id string) error
	// ClearEmployee nulls created_by and manager where they point at employeeID
	ClearEmployee(ctx context.Context, employeeID string) error
}
