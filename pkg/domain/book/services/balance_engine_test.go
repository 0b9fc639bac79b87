package book_services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	book_entities "github.com/psavelis/ledger-book/pkg/domain/book/entities"
	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
)

func commitEntry(t *testing.T, repo *inMemoryRepository, book *book_entities.Book, memo, debitPath, creditPath string, amount float64) {
	t.Helper()

	entry := NewEntryBuilder(repo, book, memo, nil, nil)
	_, err := entry.Debit(debitPath, amount, nil)
	require.NoError(t, err)
	_, err = entry.Credit(creditPath, amount, nil)
	require.NoError(t, err)

	_, err = entry.Commit(context.Background(), book_in.CommitOptions{})
	require.NoError(t, err)
}

func TestBalanceEngine_OpenClose(t *testing.T) {
	repo := newInMemoryRepository()
	book := newTestBook(t)
	commitEntry(t, repo, book, "opening", "Assets:Cash", "Income:Sales", 100)

	engine := NewBalanceEngine(repo)

	assetBalance, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Assets"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(-100), assetBalance.Balance)
	assert.Equal(t, int64(1), assetBalance.Notes)

	incomeBalance, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Income"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(100), incomeBalance.Balance)
}

func TestBalanceEngine_PrefixAggregation(t *testing.T) {
	repo := newInMemoryRepository()
	book := newTestBook(t)

	commitEntry(t, repo, book, "usd deposit", "Assets:Cash:USD", "Income:Sales", 10)
	commitEntry(t, repo, book, "eur deposit", "Assets:Cash:EUR", "Income:Sales", 20)
	commitEntry(t, repo, book, "bank deposit", "Assets:Bank:USD", "Income:Sales", 30)

	engine := NewBalanceEngine(repo)

	result, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Assets:Cash"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(-30), result.Balance)
	assert.Equal(t, int64(2), result.Notes)
}

func TestBalanceEngine_NoSnapshotNoTransactions(t *testing.T) {
	repo := newInMemoryRepository()
	book := newTestBook(t)

	engine := NewBalanceEngine(repo)
	result, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Assets"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Balance)
	assert.Equal(t, int64(0), result.Notes)
}

func TestBalanceEngine_SnapshotRefreshThenDelta(t *testing.T) {
	precision := 8
	snapSec := 60
	book, err := book_entities.NewBook("snap-book", book_entities.BookOptions{
		Precision:          &precision,
		BalanceSnapshotSec: &snapSec,
	})
	require.NoError(t, err)

	repo := newInMemoryRepository()
	commitEntry(t, repo, book, "first", "Assets:Cash", "Income:Sales", 40)

	engine := NewBalanceEngine(repo)

	first, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Assets:Cash"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(-40), first.Balance)
	require.Len(t, repo.snapshots, 1)

	commitEntry(t, repo, book, "second", "Assets:Cash", "Income:Sales", 15)

	second, err := engine.Balance(context.Background(), book, book_in.Query{Account: "Assets:Cash"}, book_in.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, float64(-55), second.Balance)
}
