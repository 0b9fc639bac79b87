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
)

// VoidProtocol reverses a prior journal while preserving auditability (§4.5).
type VoidProtocol struct {
	repo book_out.BookRepository
}

func NewVoidProtocol(repo book_out.BookRepository) *VoidProtocol {
	return &VoidProtocol{repo: repo}
}

func (v *VoidProtocol) Void(ctx context.Context, book *book_entities.Book, journalID uuid.UUID, reason string, opts book_in.VoidOptions) (*book_entities.Journal, error) {
	execCtx := ctx
	if opts.Session != nil {
		execCtx = opts.Session
	}

	original, err := v.repo.FindJournalByID(execCtx, book.Name, journalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, common.NewJournalNotFoundError(book.Name, journalID)
	}
	if original.Voided {
		return nil, common.NewJournalAlreadyVoidedError(journalID)
	}

	originalTransactions, err := v.repo.FindTransactionsByJournal(execCtx, book.Name, journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal := &book_entities.Journal{
		ID:              uuid.New(),
		Book:            book.Name,
		Datetime:        now,
		Memo:            book_entities.NewReversalMemo(original.Memo, reason),
		OriginalJournal: &original.ID,
		Transactions:    make([]primitive.ObjectID, 0, len(originalTransactions)),
		CreatedAt:       now,
	}

	reversalPostings := make([]*book_entities.Transaction, 0, len(originalTransactions))
	accounts := make([]string, 0, len(originalTransactions))

	for _, t := range originalTransactions {
		posting := &book_entities.Transaction{
			ID:              primitive.NewObjectID(),
			Book:            book.Name,
			Journal:         reversal.ID,
			Datetime:        now,
			Timestamp:       now,
			AccountPath:     t.AccountPath,
			Accounts:        t.Accounts,
			Debit:           t.Credit, // swapped: §4.5
			Credit:          t.Debit,
			Meta:            t.Meta,
			OriginalJournal: &original.ID,
		}

		reversal.Transactions = append(reversal.Transactions, posting.ID)
		reversalPostings = append(reversalPostings, posting)
		accounts = append(accounts, posting.AccountPath)
	}

	accounts = DedupeAndOrderAccounts(accounts)

	commit := func(sessCtx mongo.SessionContext) error {
		if err := v.repo.AcquireAccountLocks(sessCtx, book.Name, accounts); err != nil {
			return err
		}

		if err := v.repo.MarkJournalVoided(sessCtx, book.Name, original.ID, reason, reversal.ID); err != nil {
			return err
		}

		if err := v.repo.MarkTransactionsVoided(sessCtx, book.Name, original.ID, reason); err != nil {
			return err
		}

		if err := v.repo.InsertJournal(sessCtx, reversal); err != nil {
			return err
		}

		return v.repo.InsertTransactions(sessCtx, reversalPostings)
	}

	if opts.Session != nil {
		err = commit(opts.Session)
	} else {
		err = v.repo.WithTransaction(ctx, commit)
	}

	if err != nil {
		slog.Warn("void protocol failed", "book", book.Name, "journal", journalID, "err", err)
		return nil, err
	}

	slog.Debug("journal voided", "book", book.Name, "journal", journalID, "reversal", reversal.ID, "reason", reason)

	return reversal, nil
}
