package book_services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

// inMemoryRepository is a minimal, in-process stand-in for book_out.BookRepository, good enough
// to exercise the entry builder, balance engine, ledger lister, and void protocol against the
// concrete scenarios without a live MongoDB instance.
type inMemoryRepository struct {
	mu           sync.Mutex
	journals     map[uuid.UUID]*book_entities.Journal
	transactions []*book_entities.Transaction
	locks        map[string]int64
	snapshots    []*book_entities.BalanceSnapshot
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{
		journals: make(map[uuid.UUID]*book_entities.Journal),
		locks:    make(map[string]int64),
	}
}

var _ book_out.BookRepository = (*inMemoryRepository)(nil)

func (r *inMemoryRepository) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	return fn(nil)
}

func (r *inMemoryRepository) AcquireAccountLocks(sessCtx mongo.SessionContext, book string, accounts []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range accounts {
		r.locks[book+"|"+account]++
	}
	return nil
}

func (r *inMemoryRepository) InsertJournal(sessCtx mongo.SessionContext, journal *book_entities.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.journals[journal.ID] = journal
	return nil
}

func (r *inMemoryRepository) InsertTransactions(sessCtx mongo.SessionContext, transactions []*book_entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions = append(r.transactions, transactions...)
	return nil
}

func (r *inMemoryRepository) FindJournalByID(ctx context.Context, book string, journalID uuid.UUID) (*book_entities.Journal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	journal, ok := r.journals[journalID]
	if !ok || journal.Book != book {
		return nil, nil
	}
	return journal, nil
}

func (r *inMemoryRepository) FindTransactionsByJournal(ctx context.Context, book string, journalID uuid.UUID) ([]*book_entities.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*book_entities.Transaction
	for _, t := range r.transactions {
		if t.Book == book && t.Journal == journalID {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (r *inMemoryRepository) MarkJournalVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string, voidedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	journal, ok := r.journals[journalID]
	if !ok || journal.Book != book {
		return nil
	}
	journal.Voided = true
	journal.VoidReason = reason
	journal.VoidedBy = &voidedBy
	return nil
}

func (r *inMemoryRepository) MarkTransactionsVoided(sessCtx mongo.SessionContext, book string, journalID uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.transactions {
		if t.Book == book && t.Journal == journalID {
			t.Voided = true
			t.VoidReason = reason
		}
	}
	return nil
}

func (r *inMemoryRepository) Aggregate(ctx context.Context, book string, filter bson.M) (book_out.AggregateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := decimal.Zero
	var count int64
	var lastID primitive.ObjectID

	candidates := make([]*book_entities.Transaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		if matchesFilter(t, filter) {
			candidates = append(candidates, t)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.Hex() < candidates[j].ID.Hex()
	})

	for _, t := range candidates {
		total = total.Add(t.CreditAmount().Sub(t.DebitAmount()))
		count++
		lastID = t.ID
	}

	return book_out.AggregateResult{
		Balance:           total,
		Count:             count,
		LastTransactionID: lastID,
		Found:             count > 0,
	}, nil
}

// matchesFilter interprets the subset of bson.M shapes CompileQuery and the balance engine
// actually produce; it is not a general filter evaluator.
func matchesFilter(t *book_entities.Transaction, filter bson.M) bool {
	for key, value := range filter {
		switch key {
		case "book":
			if t.Book != value.(string) {
				return false
			}
		case "account_path":
			switch v := value.(type) {
			case string:
				if t.AccountPath != v {
					return false
				}
			case bson.M:
				if in, ok := v["$in"].([]string); ok && !contains(in, t.AccountPath) {
					return false
				}
			}
		case "accounts":
			if v, ok := value.(bson.M); ok {
				if in, ok := v["$in"].([]string); ok && !anyContains(t.Accounts, in) {
					return false
				}
			}
		case "_journal":
			if t.Journal != value.(uuid.UUID) {
				return false
			}
		case "datetime":
			if v, ok := value.(bson.M); ok {
				if gte, ok := v["$gte"].(time.Time); ok && t.Datetime.Before(gte) {
					return false
				}
				if lte, ok := v["$lte"].(time.Time); ok && t.Datetime.After(lte) {
					return false
				}
			}
		case "_id":
			if v, ok := value.(bson.M); ok {
				if gt, ok := v["$gt"].(primitive.ObjectID); ok && t.ID.Hex() <= gt.Hex() {
					return false
				}
			}
		case "voided", "void_reason", "_original_journal", "debit", "credit":
			// not exercised by the in-memory scenarios below.
		default:
			// meta.<key> dotted fields.
		}
	}

	return true
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func anyContains(haystack, needles []string) bool {
	for _, n := range needles {
		if contains(haystack, n) {
			return true
		}
	}
	return false
}

func (r *inMemoryRepository) FindBestSnapshot(ctx context.Context, key book_out.SnapshotKey) (*book_entities.BalanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *book_entities.BalanceSnapshot
	for _, s := range r.snapshots {
		if s.Book != key.Book || s.Account != key.Account {
			continue
		}
		if best == nil || s.Transaction.Hex() > best.Transaction.Hex() {
			best = s
		}
	}
	return best, nil
}

func (r *inMemoryRepository) SaveSnapshot(ctx context.Context, snapshot *book_entities.BalanceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *inMemoryRepository) ListTransactions(ctx context.Context, book string, filter bson.M, sort book_out.SortSpec, skip, limit int64, populate []string) ([]*book_entities.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copies, like the documents the real repository decodes fresh on every call, so hydration
	// done for one call's populate list does not leak into the next call's results.
	var matched []*book_entities.Transaction
	for _, t := range r.transactions {
		if matchesFilter(t, filter) {
			copied := *t
			matched = append(matched, &copied)
		}
	}

	if skip > 0 && skip < int64(len(matched)) {
		matched = matched[skip:]
	} else if skip >= int64(len(matched)) {
		matched = nil
	}

	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}

	r.populateJournalRefs(matched, populate)

	return matched, nil
}

// populateJournalRefs mirrors the real repository's reference-hydration behavior closely enough
// to exercise LedgerLister's populate wiring against this in-memory double.
func (r *inMemoryRepository) populateJournalRefs(transactions []*book_entities.Transaction, populate []string) {
	var wantJournal, wantOriginal bool
	for _, field := range populate {
		switch field {
		case "_journal":
			wantJournal = true
		case "_original_journal":
			wantOriginal = true
		}
	}
	if !wantJournal && !wantOriginal {
		return
	}

	for _, t := range transactions {
		if wantJournal {
			t.JournalDoc = r.journals[t.Journal]
		}
		if wantOriginal && t.OriginalJournal != nil {
			t.OriginalJournalDoc = r.journals[*t.OriginalJournal]
		}
	}
}

func (r *inMemoryRepository) CountTransactions(ctx context.Context, book string, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, t := range r.transactions {
		if matchesFilter(t, filter) {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryRepository) ListAccounts(ctx context.Context, book string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	var accounts []string
	for _, t := range r.transactions {
		if t.Book != book {
			continue
		}
		for _, a := range t.Accounts {
			if !seen[a] {
				seen[a] = true
				accounts = append(accounts, a)
			}
		}
	}
	return accounts, nil
}

func mustAmount(v float64) book_vos.Amount {
	a, err := book_vos.NewAmount(v)
	if err != nil {
		panic(err)
	}
	return a
}
