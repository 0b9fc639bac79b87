package book_entities

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal is the atomic unit of commit: a group of postings whose debits and credits balance.
type Journal struct {
	ID          uuid.UUID  `json:"id" bson:"_id"`
	Book        string     `json:"book" bson:"book"`
	Datetime    time.Time  `json:"datetime" bson:"datetime"`
	Memo        string     `json:"memo" bson:"memo"`
	Voided      bool       `json:"voided" bson:"voided"`
	VoidReason  string     `json:"void_reason,omitempty" bson:"void_reason,omitempty"`
	VoidedBy    *uuid.UUID `json:"voided_by,omitempty" bson:"voided_by,omitempty"`
	// OriginalJournal back-references the journal this one reverses, when it is itself a reversal.
	OriginalJournal *uuid.UUID           `json:"_original_journal,omitempty" bson:"_original_journal,omitempty"`
	Transactions    []primitive.ObjectID `json:"transactions" bson:"transactions"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
}

const voidMemoPrefix = "[VOID] "

// NewReversalMemo formats the memo of a reversing journal, per §4.5.
func NewReversalMemo(originalMemo, reason string) string {
	if reason == "" {
		return voidMemoPrefix + originalMemo
	}
	return voidMemoPrefix + reason + ": " + originalMemo
}
