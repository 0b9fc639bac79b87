package book_services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	book_in "github.com/psavelis/ledger-book/pkg/domain/book/ports/in"
)

func TestCompileQuery_FullDepthAccountUsesAccountPath(t *testing.T) {
	book := newTestBook(t)

	filter, err := CompileQuery(book, book_in.Query{Account: "Assets:Cash:Checking"})
	require.NoError(t, err)
	assert.Equal(t, "Assets:Cash:Checking", filter["account_path"])
	_, usesAccounts := filter["accounts"]
	assert.False(t, usesAccounts)
}

func TestCompileQuery_PrefixAccountUsesAccountsArray(t *testing.T) {
	book := newTestBook(t)

	filter, err := CompileQuery(book, book_in.Query{Account: "Assets:Cash"})
	require.NoError(t, err)

	accountsFilter, ok := filter["accounts"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, []string{"Assets:Cash"}, accountsFilter["$in"])
}

func TestCompileQuery_DateRangeBothBounds(t *testing.T) {
	book := newTestBook(t)

	start := "2024-05-01"
	end := "2024-07-01"
	filter, err := CompileQuery(book, book_in.Query{StartDate: start, EndDate: end})
	require.NoError(t, err)

	dateFilter, ok := filter["datetime"].(bson.M)
	require.True(t, ok)
	assert.True(t, dateFilter["$gte"].(time.Time).Before(dateFilter["$lte"].(time.Time)))
}

func TestCompileQuery_DeniesPrototypePollutionKeys(t *testing.T) {
	book := newTestBook(t)

	filter, err := CompileQuery(book, book_in.Query{Extra: map[string]interface{}{
		"__proto__":   map[string]interface{}{"polluted": true},
		"constructor": "evil",
		"prototype":   "evil",
		"payment_id":  "abc123",
	}})
	require.NoError(t, err)

	assert.NotContains(t, filter, "__proto__")
	assert.NotContains(t, filter, "constructor")
	assert.NotContains(t, filter, "prototype")
	assert.Equal(t, "abc123", filter["meta.payment_id"])
}

func TestCompileQuery_RecognizedColumnsStayTopLevel(t *testing.T) {
	book := newTestBook(t)

	filter, err := CompileQuery(book, book_in.Query{Extra: map[string]interface{}{
		"voided": true,
	}})
	require.NoError(t, err)
	assert.Equal(t, true, filter["voided"])
}

func TestCompileQuery_IsIdempotentOnCanonicalForm(t *testing.T) {
	book := newTestBook(t)

	query := book_in.Query{Account: "Assets:Cash:Checking", Extra: map[string]interface{}{"region": "us"}}

	first, err := CompileQuery(book, query)
	require.NoError(t, err)

	second, err := CompileQuery(book, query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompileQuery_RejectsUnrecognizedAccountShape(t *testing.T) {
	book := newTestBook(t)

	_, err := CompileQuery(book, book_in.Query{Account: 42})
	assert.Error(t, err)
}
