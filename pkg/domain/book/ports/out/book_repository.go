package book_out

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
)

// SnapshotKey identifies the (book, account, meta) bucket a BalanceSnapshot caches.
type SnapshotKey struct {
	Book    string
	Account string // comma-joined canonical account form; empty means whole-book
	Meta    bson.M // nil means no-meta
}

// AggregateResult is the output of the balance engine's match/group aggregation (§4.3 step 2).
type AggregateResult struct {
	Balance           decimal.Decimal
	Count             int64
	LastTransactionID primitive.ObjectID
	Found             bool
}

// SortSpec orders the ledger lister's results (§4.4: datetime desc, timestamp desc).
type SortSpec = bson.D

// BookRepository is the store-facing port every service in this package depends on.
// Implementations own the collections named in §6: transactions, journals, locks, balances.
type BookRepository interface {
	// WithTransaction runs fn inside a single store-level session/transaction and propagates
	// its result, so a canceled commit leaves no partial state (§5).
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error

	// AcquireAccountLocks upserts a (book, account) lock document for each account, inside sessCtx.
	AcquireAccountLocks(sessCtx mongo.SessionContext, book string, accounts []string) error

	// InsertJournal and InsertTransactions persist one commit's documents; callers wrap both
	// inside the same WithTransaction call.
	InsertJournal(sessCtx mongo.SessionContext, journal *book_entities.Journal) error
	InsertTransactions(sessCtx mongo.SessionContext, transactions []*book_entities.Transaction) error

	FindJournalByID(ctx context.Context, book string, journalID uuid.UUID) (*book_entities.Journal, error)
	FindTransactionsByJournal(ctx context.Context, book string, journalID uuid.UUID) ([]*book_entities.Transaction, error)

	// MarkJournalVoided and MarkTransactionsVoided apply the void protocol's in-place updates (§4.5).
	MarkJournalVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string, voidedBy uuid.UUID) error
	MarkTransactionsVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string) error

	// Aggregate runs the balance engine's match/group pipeline over filter (§4.3 step 2).
	Aggregate(ctx context.Context, book string, filter bson.M) (AggregateResult, error)

	// FindBestSnapshot returns the snapshot for key with the largest Transaction id, if any.
	FindBestSnapshot(ctx context.Context, key SnapshotKey) (*book_entities.BalanceSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *book_entities.BalanceSnapshot) error

	// ListTransactions and CountTransactions back the ledger lister (§4.4). populate names which
	// recognized reference columns (currently "_journal", "_original_journal") get hydrated onto
	// each result's JournalDoc/OriginalJournalDoc; callers pass only pre-filtered, recognized names.
	ListTransactions(ctx context.Context, book string, filter bson.M, sort SortSpec, skip, limit int64, populate []string) ([]*book_entities.Transaction, error)
	CountTransactions(ctx context.Context, book string, filter bson.M) (int64, error)

	// ListAccounts enumerates every distinct account path and prefix ever posted in book.
	ListAccounts(ctx context.Context, book string) ([]string, error)
}
