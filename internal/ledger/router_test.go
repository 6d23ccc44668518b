package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSplitPayment(t *testing.T) {
	tests := []struct {
		name        string
		value       int64
		percent     int
		principal   int64
		wantRepay   int64
		wantForward int64
	}{
		{"plain split", 10, 30, 5, 3, 7},
		{"rounds down", 10, 33, 100, 3, 7},
		{"capped at principal", 100, 30, 5, 5, 95},
		{"full interception", 10, 100, 100, 10, 0},
		{"tiny value rounds to zero", 1, 30, 100, 0, 1},
		{"exact close", 10, 50, 5, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repay, forward := splitPayment(tt.value, tt.percent, tt.principal)
			assert.Equal(t, tt.wantRepay, repay)
			assert.Equal(t, tt.wantForward, forward)
			assert.Equal(t, tt.value, repay+forward)
		})
	}
}

func TestDecodeTarget(t *testing.T) {
	id := uuid.New()

	got, ok := decodeTarget(id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok = decodeTarget("  " + id.String() + "\n")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	for _, memo := range []string{"", "invoice #42", "not-a-uuid", id.String() + "x"} {
		_, ok := decodeTarget(memo)
		assert.False(t, ok, "memo %q", memo)
	}
}
