package book_in

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
)

// Query is the user-facing filter shape accepted by balance, ledger, and void (§4.1).
// Account may be a single string or a slice of strings; Extra carries arbitrary ad-hoc fields
// that the query compiler routes into either a recognized top-level column or nested meta.
type Query struct {
	Account   interface{} // string or []string
	StartDate interface{} // time.Time, string, or numeric epoch millis
	EndDate   interface{}
	Journal   *uuid.UUID
	Extra     map[string]interface{}

	// PerPage/Page drive the ledger lister's pagination (§4.4); zero PerPage means unpaginated.
	PerPage int64
	Page    int64
}

// QueryOptions carries the optional store session, and for ledger queries, the lean flag (§6).
type QueryOptions struct {
	Session mongo.SessionContext
	Lean    bool
}

// BalanceResult is Book.balance's return shape (§6, §4.3).
type BalanceResult struct {
	Balance float64
	Notes   int64
}

// LedgerResult is Book.ledger's return shape (§6, §4.4).
type LedgerResult struct {
	Results []*book_entities.Transaction
	Total   int64
}

// BookService is the facade implementing every public operation named in §6.
type BookService interface {
	EntryFactory

	Balance(ctx context.Context, query Query, opts QueryOptions) (BalanceResult, error)
	Ledger(ctx context.Context, query Query, populate []string, opts QueryOptions) (LedgerResult, error)
	Void(ctx context.Context, journalID uuid.UUID, reason string, opts VoidOptions) (*book_entities.Journal, error)
	ListAccounts(ctx context.Context, opts QueryOptions) ([]string, error)
	WritelockAccounts(ctx context.Context, accounts []string, session mongo.SessionContext) error
}
