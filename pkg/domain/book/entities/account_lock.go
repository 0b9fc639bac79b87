package book_entities

import "time"

// AccountLock is the per-(book, account) upsert-only document used to provoke a store-level
// write-write conflict between concurrent commits touching the same account (§4.6). Its body
// carries no semantic data beyond a revision counter and an updatedAt bump.
type AccountLock struct {
	Book      string    `json:"book" bson:"book"`
	Account   string    `json:"account" bson:"account"`
	Revision  int64     `json:"revision" bson:"revision"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
