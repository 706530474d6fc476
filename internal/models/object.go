package models

import "time"

// Object is a registered digital heritage object. The CID is computed once at
// ingestion over the original file bytes and never changes afterwards.
type Object struct {
	ObjectID  string    `json:"object_id"`
	CID       string    `json:"cid"`
	CreatedAt time.Time `json:"created_at"`
}
