package util

import (
	"math"
	"strconv"
)

const DefaultPageSize = 10

// Calculate clamps page/size and converts them to an offset/limit pair.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// RoundMoney keeps monetary values at two decimal places, the way the
// legacy store kept them.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// Pages returns the page count for total rows at the given size.
func Pages(total int64, size int) int64 {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
