package db

import "time"

// Member is a row of the members table, keyed by (ID, Term).
// Empty strings are stored as NULL.
type Member struct {
	ID             string
	Term           int
	Name           string
	WikipediaTitle string
	Party          string
	Source         string
	Area           string
	AreaID         string
	StartDate      string
	EndDate        string
	Replaced       string
	Wikidata       string
}

// Term records one scraped parliamentary term article.
type Term struct {
	ID          int
	URL         string
	Title       string
	MemberCount int
	ScrapedAt   time.Time
}
