package service

import (
	"encoding/base64"
	"strconv"
)

// EncodeCursor wraps a feed offset into an opaque pagination cursor.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeCursor resolves a cursor back to an offset. Garbled base64,
// non-numeric content and negative offsets all decode to 0 so a bad cursor
// never fails the request.
func DecodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
