// Package utils holds tiny cross-layer helpers with no domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def for anything
// strconv.Atoi rejects (including the empty string). Input is not
// trimmed: " 42" is a parse failure, not 42. Handlers use it to read
// query and path parameters without error plumbing.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
