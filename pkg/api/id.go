package api

import "strconv"

// ParseExpenseID parses a path segment as an expense id. Only positive
// decimal integers are accepted; anything else reports false and is treated
// by callers as a missing expense.
func ParseExpenseID(s string) (int64, bool) {
	if s == "" || len(s) > 19 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
