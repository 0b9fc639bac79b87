package book_services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
)

// BookService is the facade implementing every public operation in §6, orchestrating the
// query compiler, entry builder, balance engine, ledger lister, and void protocol against
// one named book.
type BookService struct {
	repo          book_out.BookRepository
	book          *book_entities.Book
	balanceEngine *BalanceEngine
	ledgerLister  *LedgerLister
	voidProtocol  *VoidProtocol
}

var _ book_in.BookService = (*BookService)(nil)

func NewBookService(repo book_out.BookRepository, book *book_entities.Book) *BookService {
	return &BookService{
		repo:          repo,
		book:          book,
		balanceEngine: NewBalanceEngine(repo),
		ledgerLister:  NewLedgerLister(repo),
		voidProtocol:  NewVoidProtocol(repo),
	}
}

func (s *BookService) Entry(memo string, datetime *time.Time, originalJournal *uuid.UUID) book_in.Entry {
	return NewEntryBuilder(s.repo, s.book, memo, datetime, originalJournal)
}

func (s *BookService) Balance(ctx context.Context, query book_in.Query, opts book_in.QueryOptions) (book_in.BalanceResult, error) {
	return s.balanceEngine.Balance(ctx, s.book, query, opts)
}

func (s *BookService) Ledger(ctx context.Context, query book_in.Query, populate []string, opts book_in.QueryOptions) (book_in.LedgerResult, error) {
	execCtx := ctx
	if opts.Session != nil {
		execCtx = opts.Session
	}
	return s.ledgerLister.Ledger(execCtx, s.book, query, populate)
}

func (s *BookService) Void(ctx context.Context, journalID uuid.UUID, reason string, opts book_in.VoidOptions) (*book_entities.Journal, error) {
	return s.voidProtocol.Void(ctx, s.book, journalID, reason, opts)
}

func (s *BookService) ListAccounts(ctx context.Context, opts book_in.QueryOptions) ([]string, error) {
	execCtx := ctx
	if opts.Session != nil {
		execCtx = opts.Session
	}
	return s.repo.ListAccounts(execCtx, s.book.Name)
}

func (s *BookService) WritelockAccounts(ctx context.Context, accounts []string, session mongo.SessionContext) error {
	ordered := DedupeAndOrderAccounts(accounts)

	if session != nil {
		return s.repo.AcquireAccountLocks(session, s.book.Name, ordered)
	}

	return s.repo.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return s.repo.AcquireAccountLocks(sessCtx, s.book.Name, ordered)
	})
}
