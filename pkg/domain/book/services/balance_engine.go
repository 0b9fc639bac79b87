package book_services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
	book_vos "github.com/psavelis/ledger-book/pkg/domain/book/value-objects"
)

// BalanceEngine answers "sum of credit - debit over this filter" using the freshest applicable
// snapshot and opportunistically refreshing it (§4.3).
type BalanceEngine struct {
	repo book_out.BookRepository
}

func NewBalanceEngine(repo book_out.BookRepository) *BalanceEngine {
	return &BalanceEngine{repo: repo}
}

func (e *BalanceEngine) Balance(ctx context.Context, book *book_entities.Book, query book_in.Query, opts book_in.QueryOptions) (book_in.BalanceResult, error) {
	filter, err := CompileQuery(book, query)
	if err != nil {
		return book_in.BalanceResult{}, err
	}

	joinedAccount, err := JoinedAccount(query.Account)
	if err != nil {
		return book_in.BalanceResult{}, err
	}
	meta := ExtractMeta(query.Extra)

	key := book_out.SnapshotKey{Book: book.Name, Account: joinedAccount, Meta: meta}

	// execCtx carries the caller's session, if any, to every store call (§5); mongo.SessionContext
	// embeds context.Context, so it can stand in for ctx unchanged.
	execCtx := ctx
	if opts.Session != nil {
		execCtx = opts.Session
	}

	var snapshot *book_entities.BalanceSnapshot
	needsRefresh := false

	if book.SnapshotsEnabled() {
		snapshot, err = e.repo.FindBestSnapshot(execCtx, key)
		if err != nil {
			return book_in.BalanceResult{}, err
		}

		if snapshot != nil {
			filter["_id"] = bson.M{"$gt": snapshot.Transaction}
			needsRefresh = snapshot.IsStale(book.BalanceSnapshotSec, time.Now().UTC())
		} else {
			needsRefresh = true
		}
	}

	agg, err := e.repo.Aggregate(execCtx, book.Name, filter)
	if err != nil {
		return book_in.BalanceResult{}, err
	}

	baseBalance := decimal.Zero
	if snapshot != nil {
		baseBalance, _ = decimal.NewFromString(snapshot.Balance)
	}

	var notes int64
	aggregated := decimal.Zero
	if agg.Found {
		aggregated = book_vos.RoundToPrecision(agg.Balance, int32(book.Precision))
		notes = agg.Count
	}

	totalBalance := baseBalance.Add(aggregated)

	if needsRefresh && agg.Found && agg.Count > 0 {
		snap := &book_entities.BalanceSnapshot{
			ID:          primitive.NewObjectID(),
			Book:        book.Name,
			Account:     joinedAccount,
			Meta:        meta,
			Balance:     totalBalance.String(),
			Transaction: agg.LastTransactionID,
			Timestamp:   time.Now().UTC(),
			CreatedAt:   time.Now().UTC(),
			ExpireAt:    time.Now().UTC().Add(time.Duration(2*book.BalanceSnapshotSec) * time.Second),
		}

		if err := e.repo.SaveSnapshot(execCtx, snap); err != nil {
			slog.Warn("balance snapshot refresh failed", "book", book.Name, "account", joinedAccount, "err", err)
		}
	}

	balanceFloat, _ := totalBalance.Float64()

	return book_in.BalanceResult{Balance: balanceFloat, Notes: notes}, nil
}
