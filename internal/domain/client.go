// internal/domain/client.go
package domain

import "time"

// Client is the account holder a wallet belongs to.
// Identity is managed elsewhere; only the fields needed to resolve an owner are kept here.
type Client struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewClient creates a new Client instance.
func NewClient(id, fullName, phoneNumber string) *Client {
	return &Client{
		ID:          id,
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
}
