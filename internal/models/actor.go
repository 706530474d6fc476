package models

import "time"

// Actor is a registered signing identity (institution or curator).
// Only the public half of the keypair is ever stored.
type Actor struct {
	ActorID   string    `json:"actor_id"`
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}
