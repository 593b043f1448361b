package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time, which lets audit posts in the log channel and webhook be
// correlated with server logs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
