package note

import "time"

// Visibility controls who can read a note.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Note is a markdown document. Content is stored as the author wrote it;
// HTML is derived on read, never persisted.
type Note struct {
	ID         string     `db:"id"`
	AuthorID   string     `db:"author_id"`
	Title      string     `db:"title"`
	Content    string     `db:"content"`
	Visibility Visibility `db:"visibility"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// NoteSummary is the listing shape: metadata only, no content.
type NoteSummary struct {
	ID         string     `json:"id" db:"id"`
	Title      string     `json:"title" db:"title"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// RenderedNote is a note plus its sanitized HTML.
type RenderedNote struct {
	Note
	HTMLContent string
}
