package service

import "fmt"

// ComposeETag builds the conditional validator from everything that shaped a
// response: candidate-set version, cached-feed version, and page offset. The
// offset is included so two pages of the same cached feed never share a
// validator.
func ComposeETag(candidatesVersion, feedVersion int64, offset int) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%dx%dx%d", candidatesVersion, feedVersion, offset))
}
