package activity

import (
	"fmt"
	"time"
)

// Entry is a single append-only activity record. Entries are never updated
// or deleted once written.
type Entry struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Source composes the conventional "<LocationName> (<Actor>)" source tag.
func Source(location, actor string) string {
	return fmt.Sprintf("%s (%s)", location, actor)
}
