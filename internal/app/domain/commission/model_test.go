package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRates(t *testing.T) {
	rates := DefaultRates()

	assert.Len(t, rates, MaxDepth)
	assert.Equal(t, 0.25, rates[1])
	assert.Equal(t, 0.15, rates[2])
	assert.Equal(t, 0.10, rates[3])

	// Nothing beyond the third level earns.
	_, ok := rates[4]
	assert.False(t, ok)
}

func TestTransactionKey(t *testing.T) {
	key := TransactionKey("m-123", "2024-06", 2)
	assert.Equal(t, "m-123:2024-06:2", key)

	// Same payment, different levels, distinct keys.
	assert.NotEqual(t, key, TransactionKey("m-123", "2024-06", 1))
	assert.NotEqual(t, key, TransactionKey("m-123", "2024-07", 2))
}
