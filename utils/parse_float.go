package utils

import (
	"strconv"
	"strings"
)

// ParseFloat converts a decimal string to a float64. Money fields stay
// decimal strings until this final boundary so repeated edits never
// reformat them; an empty string parses to 0.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value, nil
}
