package model

import "time"

// Commit is a single history entry touching a file
type Commit struct {
	Hash  string    `json:"hash"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// AuthorCount is the number of changes attributed to one author email
type AuthorCount struct {
	Email   string `json:"email"`
	Changes int    `json:"changes"`
}

// GitRecord holds the git facts of one source file.
// Created and Modified are either taken from history or equal to the
// placeholder dates returned by PlaceholderDates.
type GitRecord struct {
	Created  time.Time     `json:"created"`
	Modified time.Time     `json:"modified"`
	Authors  []AuthorCount `json:"authors"`
}

var (
	placeholderCreated  = time.Now().UTC().Add(-365 * 24 * time.Hour).Truncate(time.Second)
	placeholderModified = time.Now().UTC().Add(-40 * 24 * time.Hour).Truncate(time.Second)
)

// PlaceholderDates returns the creation and modification dates used for files
// without history. They are fixed for the lifetime of the process.
func PlaceholderDates() (created, modified time.Time) {
	return placeholderCreated, placeholderModified
}

// NoHistory returns a record for a file without queryable history
func NoHistory() GitRecord {
	return GitRecord{Created: placeholderCreated, Modified: placeholderModified}
}

// HasHistory reports whether the dates come from real history
func (r GitRecord) HasHistory() bool {
	return !r.Created.Equal(placeholderCreated) || !r.Modified.Equal(placeholderModified)
}

// HasAuthors reports whether at least one author is attributed
func (r GitRecord) HasAuthors() bool {
	return len(r.Authors) > 0
}

// Emails returns author emails in record order
func (r GitRecord) Emails() []string {
	out := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		out = append(out, a.Email)
	}
	return out
}
