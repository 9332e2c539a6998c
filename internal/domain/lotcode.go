package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Lot codes are human readable and monotonically sequenced per calendar
// month: LOT-YYMM###, first lot of a month getting 001.
const lotCodeSequenceWidth = 3

// LotCodePrefix returns the LOT-YYMM prefix for the given year and month.
func LotCodePrefix(year int, month int) string {
	return fmt.Sprintf("LOT-%02d%02d", year%100, month)
}

// FormatLotCode builds the full code for a sequence number within a month.
func FormatLotCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, lotCodeSequenceWidth, seq)
}

// LotCodeSequence extracts the numeric suffix of a lot code sharing the
// given prefix. Returns 0 for codes it cannot parse.
func LotCodeSequence(prefix, code string) int {
	suffix, ok := strings.CutPrefix(code, prefix)
	if !ok {
		return 0
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

// NextLotCode returns the code following highest within the month prefix.
// An empty highest yields the month's first code.
func NextLotCode(prefix, highest string) string {
	return FormatLotCode(prefix, LotCodeSequence(prefix, highest)+1)
}
