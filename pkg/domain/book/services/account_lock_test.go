package book_services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndOrderAccounts(t *testing.T) {
	accounts := []string{"Assets:Cash", "Income:Sales", "Assets:Cash", "Assets"}
	assert.Equal(t, []string{"Assets", "Assets:Cash", "Income:Sales"}, DedupeAndOrderAccounts(accounts))
}

func TestDedupeAndOrderAccounts_Empty(t *testing.T) {
	assert.Empty(t, DedupeAndOrderAccounts(nil))
}
