package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintptrToInt64(t *testing.T) {
	tests := []struct {
		name  string
		input uintptr
		want  int64
	}{
		{"zero", 0, 0},
		{"small", 48, 48},
		{"max int32", math.MaxInt32, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UintptrToInt64(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUintptrToInt64Overflow(t *testing.T) {
	if uint64(^uintptr(0)) <= math.MaxInt64 {
		t.Skip("uintptr fits in int64 on this platform")
	}
	_, err := UintptrToInt64(^uintptr(0))
	assert.Error(t, err)
}
