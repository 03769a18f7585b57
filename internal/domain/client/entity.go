package client

import "time"

type Client struct {
	ID        string
	Name      string
	CreatedBy *string
	ManagerID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectRef is a project listed under its client
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
