package book_services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
)

// populatableFields is the closed set of transaction columns the ledger lister accepts in a
// populate request; unknown fields are silently ignored (§4.4), preventing a caller from walking
// arbitrary paths. Only the reference columns _journal and _original_journal are hydrated by the
// repository; the other accepted names have no effect.
var populatableFields = map[string]bool{
	"_journal":          true,
	"account_path":      true,
	"accounts":          true,
	"meta":              true,
	"_original_journal": true,
}

var defaultLedgerSort = bson.D{
	{Key: "datetime", Value: -1},
	{Key: "timestamp", Value: -1},
}

// LedgerLister returns a paginated, sorted enumeration of transactions matching a filter (§4.4).
type LedgerLister struct {
	repo book_out.BookRepository
}

func NewLedgerLister(repo book_out.BookRepository) *LedgerLister {
	return &LedgerLister{repo: repo}
}

func (l *LedgerLister) Ledger(ctx context.Context, book *book_entities.Book, query book_in.Query, populate []string) (book_in.LedgerResult, error) {
	filter, err := CompileQuery(book, query)
	if err != nil {
		return book_in.LedgerResult{}, err
	}

	allowedPopulate := validatePopulate(populate)

	var skip, limit int64
	paginated := query.PerPage > 0

	if paginated {
		page := query.Page
		if page < 1 {
			page = 1
		}
		skip = (page - 1) * query.PerPage
		limit = query.PerPage
	}

	results, err := l.repo.ListTransactions(ctx, book.Name, filter, defaultLedgerSort, skip, limit, allowedPopulate)
	if err != nil {
		return book_in.LedgerResult{}, err
	}

	total := int64(len(results))
	if paginated {
		total, err = l.repo.CountTransactions(ctx, book.Name, filter)
		if err != nil {
			return book_in.LedgerResult{}, err
		}
	}

	return book_in.LedgerResult{Results: results, Total: total}, nil
}

// validatePopulate drops any field that does not name a recognized transaction column (§4.4);
// it fails open rather than erroring, since an unrecognized populate request is silently ignored,
// not rejected.
func validatePopulate(populate []string) []string {
	allowed := make([]string, 0, len(populate))
	for _, field := range populate {
		if populatableFields[field] {
			allowed = append(allowed, field)
		}
	}
	return allowed
}
