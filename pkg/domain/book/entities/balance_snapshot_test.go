package book_entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBalanceSnapshot_IsStale(t *testing.T) {
	snapshot := &BalanceSnapshot{Timestamp: time.Now().Add(-2 * time.Minute)}

	assert.True(t, snapshot.IsStale(60, time.Now()))
	assert.False(t, snapshot.IsStale(600, time.Now()))
}
