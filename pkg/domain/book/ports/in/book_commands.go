package book_in

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
)

// CommitOptions carries the optional store session a caller wants a commit bound to (§6).
type CommitOptions struct {
	Session mongo.SessionContext
}

// VoidOptions mirrors CommitOptions for the void protocol.
type VoidOptions struct {
	Session mongo.SessionContext
}

// Entry accumulates the pending postings of one journal before it is committed (§4.2).
type Entry interface {
	Debit(path string, amount float64, meta map[string]interface{}) (Entry, error)
	Credit(path string, amount float64, meta map[string]interface{}) (Entry, error)
	Commit(ctx context.Context, opts CommitOptions) (*book_entities.Journal, error)
}

// EntryFactory opens new entries against a book (Book.entry in §6).
type EntryFactory interface {
	Entry(memo string, datetime *time.Time, originalJournal *uuid.UUID) Entry
}
