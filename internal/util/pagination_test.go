package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		page, size           int
		wantOffset, wantSize int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantSize: 10},
		{name: "third page", page: 3, size: 20, wantOffset: 40, wantSize: 20},
		{name: "page below one clamps", page: 0, size: 10, wantOffset: 0, wantSize: 10},
		{name: "zero size falls back", page: 2, size: 0, wantOffset: 10, wantSize: DefaultPageSize},
		{name: "oversized falls back", page: 1, size: 500, wantOffset: 0, wantSize: DefaultPageSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantSize, limit)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("7", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
}

func TestRoundMoney(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 19.9, RoundMoney(19.9), 1e-9)
	assert.InDelta(t, 69.8, RoundMoney(19.9+49.9), 1e-9)
	assert.InDelta(t, 10.01, RoundMoney(10.005000001), 1e-9)
	assert.InDelta(t, -3.33, RoundMoney(-3.3349), 1e-9)
}

func TestPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), Pages(0, 10))
	assert.Equal(t, int64(1), Pages(1, 10))
	assert.Equal(t, int64(1), Pages(10, 10))
	assert.Equal(t, int64(2), Pages(11, 10))
}
