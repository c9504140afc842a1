package extraction

import (
	"strconv"
	"strings"
)

var numberCleaner = strings.NewReplacer(".", "", ",", "", "$", "")

// Normalize turns a printed amount such as "$1.500" into 1500.
// Separators and the currency sign are dropped; anything that is not a
// non-negative integer afterwards yields 0.
func Normalize(s string) int {
	s = strings.TrimSpace(numberCleaner.Replace(s))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
