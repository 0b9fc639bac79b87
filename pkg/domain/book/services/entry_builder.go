package book_services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common "github.com/psavelis/ledger-book/pkg/domain"
	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

// EntryBuilder accumulates debits and credits for one journal and commits them atomically (§4.2).
// A builder may only be committed once; repeated Commit calls fail before any store round-trip.
type EntryBuilder struct {
	repo    book_out.BookRepository
	book    *book_entities.Book
	journal *book_entities.Journal
	pending []*book_entities.Transaction

	totalDebit  book_vos.Amount
	totalCredit book_vos.Amount
	committed   bool
}

var _ book_in.Entry = (*EntryBuilder)(nil)

// NewEntryBuilder opens a new entry against book. datetime defaults to commit-time wall clock
// when nil; originalJournal cross-references the journal this entry reverses, if any (§4.2, §4.5).
func NewEntryBuilder(repo book_out.BookRepository, book *book_entities.Book, memo string, datetime *time.Time, originalJournal *uuid.UUID) *EntryBuilder {
	dt := time.Now().UTC()
	if datetime != nil {
		dt = *datetime
	}

	return &EntryBuilder{
		repo: repo,
		book: book,
		journal: &book_entities.Journal{
			ID:              uuid.New(),
			Book:            book.Name,
			Datetime:        dt,
			Memo:            memo,
			OriginalJournal: originalJournal,
			Transactions:    make([]primitive.ObjectID, 0),
			CreatedAt:       time.Now().UTC(),
		},
		totalDebit:  book_vos.Zero(),
		totalCredit: book_vos.Zero(),
	}
}

func (e *EntryBuilder) Debit(path string, amount float64, meta map[string]interface{}) (book_in.Entry, error) {
	return e.post(path, amount, 0, meta, true)
}

func (e *EntryBuilder) Credit(path string, amount float64, meta map[string]interface{}) (book_in.Entry, error) {
	return e.post(path, 0, amount, meta, false)
}

func (e *EntryBuilder) post(path string, debitAmount float64, creditAmount float64, meta map[string]interface{}, isDebit bool) (book_in.Entry, error) {
	accountPath := book_vos.AccountPath(path)
	if err := accountPath.Validate(e.book.MaxAccountPath); err != nil {
		return nil, err
	}

	var debit, credit book_vos.Amount
	var err error

	if isDebit {
		debit, err = book_vos.NewAmount(debitAmount)
	} else {
		credit, err = book_vos.NewAmount(creditAmount)
	}
	if err != nil {
		return nil, err
	}

	posting, err := book_entities.NewPosting(e.book.Name, e.journal.ID, e.journal.Datetime, accountPath, debit, credit, meta)
	if err != nil {
		return nil, err
	}
	e.pending = append(e.pending, posting)
	e.journal.Transactions = append(e.journal.Transactions, posting.ID)

	e.totalDebit = e.totalDebit.Add(debit)
	e.totalCredit = e.totalCredit.Add(credit)

	return e, nil
}

// Commit acquires write locks on every distinct touched account, verifies the balance invariant,
// and writes the journal and its transactions atomically (§4.2).
func (e *EntryBuilder) Commit(ctx context.Context, opts book_in.CommitOptions) (*book_entities.Journal, error) {
	if e.committed {
		return nil, common.NewErrBadRequest("entry already committed")
	}

	if !book_vos.WithinTolerance(e.totalDebit.Decimal(), e.totalCredit.Decimal(), int32(e.book.Precision)) {
		return nil, common.NewBookUnbalancedTransactionError(e.totalDebit.String(), e.totalCredit.String())
	}

	accounts := make([]string, 0, len(e.pending))
	for _, t := range e.pending {
		accounts = append(accounts, t.AccountPath)
	}
	accounts = DedupeAndOrderAccounts(accounts)

	commit := func(sessCtx mongo.SessionContext) error {
		if err := e.repo.AcquireAccountLocks(sessCtx, e.book.Name, accounts); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, t := range e.pending {
			t.Timestamp = now
		}

		if err := e.repo.InsertJournal(sessCtx, e.journal); err != nil {
			return err
		}

		return e.repo.InsertTransactions(sessCtx, e.pending)
	}

	var err error
	if opts.Session != nil {
		err = commit(opts.Session)
	} else {
		err = e.repo.WithTransaction(ctx, commit)
	}

	if err != nil {
		slog.Warn("book entry commit failed", "book", e.book.Name, "journal", e.journal.ID, "err", err)
		return nil, err
	}

	e.committed = true
	slog.Debug("book entry committed", "book", e.book.Name, "journal", e.journal.ID, "postings", len(e.pending))

	return e.journal, nil
}
