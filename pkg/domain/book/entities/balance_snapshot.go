package book_entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BalanceSnapshot is a cached partial sum keyed by (book, account?, meta?). Account omitted
// means a whole-book snapshot; meta omitted means a no-meta snapshot (§3).
type BalanceSnapshot struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id"`
	Book        string                 `json:"book" bson:"book"`
	Account     string                 `json:"account,omitempty" bson:"account,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
	Balance     string                 `json:"balance" bson:"balance"`
	Transaction primitive.ObjectID     `json:"transaction" bson:"transaction"`
	Timestamp   time.Time              `json:"timestamp" bson:"timestamp"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
	ExpireAt    time.Time              `json:"expireAt" bson:"expireAt"`
}

// IsStale reports whether the snapshot is older than the book's balanceSnapshotSec window
// and should be refreshed opportunistically by the balance engine (§4.3 step 1).
func (s *BalanceSnapshot) IsStale(balanceSnapshotSec int, now time.Time) bool {
	return now.Sub(s.Timestamp) >= time.Duration(balanceSnapshotSec)*time.Second
}
