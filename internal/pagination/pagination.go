// Package pagination implements the page-token helper preserved from the
// original command server: a token encodes (list_hash, element_index) so
// that a client can resume a LIST_SONGS/LIST_PLAYLISTS response where it
// left off, and the server can detect and reject paging across a list
// that changed underneath the client. Tokens are self-describing and
// carry no session affinity (see DESIGN.md for the Open Question
// resolution): any client can present any token for a list whose hash
// still matches, so there is no per-session cursor to keep in sync.
package pagination

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// DefaultMaxPageSize mirrors the source's DEFAULT_MAX_RESPONSE_SIZE.
const DefaultMaxPageSize = 200

// ListChangedError reports that a page token's embedded hash no longer
// matches the current list, per spec §4.6.
type ListChangedError struct{}

func (e *ListChangedError) Error() string { return "list changed since last page" }

// InvalidTokenError reports a malformed page token.
type InvalidTokenError struct{ Token string }

func (e *InvalidTokenError) Error() string { return fmt.Sprintf("invalid page token: %q", e.Token) }

// HashList computes the stable hash a page token pins a list's identity
// to. Any list mutation (add/remove/reorder) produces a different hash,
// invalidating outstanding tokens for that list.
func HashList[T any](items []T, key func(T) string) uint64 {
	h := fnv.New64a()
	for _, item := range items {
		h.Write([]byte(key(item)))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Encode renders a page token as "<hash>|<index>" hex-encoded, per spec
// §4.6. An index of 0 with a fresh hash is equivalent to the empty token.
func Encode(listHash uint64, index int) string {
	plain := fmt.Sprintf("%x|%d", listHash, index)
	return hex.EncodeToString([]byte(plain))
}

// Decode parses a page token. An empty token decodes to (0, 0, nil) --
// "start at 0" -- the caller must still confirm the hash against the
// current list before trusting index 0 is meaningful history.
func Decode(token string) (listHash uint64, index int, err error) {
	if token == "" {
		return 0, 0, nil
	}
	plain, err := hex.DecodeString(token)
	if err != nil {
		return 0, 0, &InvalidTokenError{Token: token}
	}
	parts := strings.SplitN(string(plain), "|", 2)
	if len(parts) != 2 {
		return 0, 0, &InvalidTokenError{Token: token}
	}
	listHash, err = strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return 0, 0, &InvalidTokenError{Token: token}
	}
	index, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &InvalidTokenError{Token: token}
	}
	return listHash, index, nil
}

// Page is one page of a paginated response.
type Page[T any] struct {
	Items     []T
	NextToken string
	HasMore   bool
}

// GetPage resolves a page token against items (whose identity is hashed
// via key), returning up to maxSize items starting at the token's index.
// It fails with ListChangedError if a non-empty token's hash does not
// match items' current hash.
func GetPage[T any](items []T, key func(T) string, token string, maxSize int) (Page[T], error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}

	currentHash := HashList(items, key)
	wantHash, index, err := Decode(token)
	if err != nil {
		return Page[T]{}, err
	}
	if token != "" && wantHash != currentHash {
		return Page[T]{}, &ListChangedError{}
	}
	if index < 0 || index > len(items) {
		return Page[T]{}, &InvalidTokenError{Token: token}
	}

	end := index + maxSize
	hasMore := end < len(items)
	if end > len(items) {
		end = len(items)
	}

	page := Page[T]{
		Items:   append([]T(nil), items[index:end]...),
		HasMore: hasMore,
	}
	if hasMore {
		page.NextToken = Encode(currentHash, end)
	}
	return page, nil
}
