package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Room is the durable metadata for a session room. The registry blob holds
// the complete ordered slice of these and is always replaced wholesale.
type Room struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Password       string `json:"password,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      *int64 `json:"updatedAt,omitempty"`
	EmptySince     *int64 `json:"emptySince"`
	UsersConnected int    `json:"usersConnected"`
}

// HasPassword reports whether joining the room requires a password.
func (r *Room) HasPassword() bool {
	return r.Password != ""
}

// NewRoomID derives a room id from the room name and a millisecond
// timestamp. The timestamp component keeps ids unique even when two clients
// create rooms with the same name at the same moment, provided the
// timestamps come from a monotonic clock.
func NewRoomID(name string, unixMillis int64) string {
	return fmt.Sprintf("%s-%d", Slugify(name), unixMillis)
}

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single dash, trimming dashes at both ends.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
