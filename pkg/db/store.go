package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertMember inserts the member or replaces every column of the existing
// (id, term) row.
func UpsertMember(db DBExecutor, m Member) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("member id must be non-empty")
	}
	if m.Term <= 0 {
		return fmt.Errorf("term must be positive, got %d", m.Term)
	}

	_, err := db.Exec(`INSERT INTO members
	  (id, term, name, wikipedia_title, party, source, area, area_id, start_date, end_date, replaced, wikidata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id, term) DO UPDATE SET
	  name = excluded.name,
	  wikipedia_title = excluded.wikipedia_title,
	  party = excluded.party,
	  source = excluded.source,
	  area = excluded.area,
	  area_id = excluded.area_id,
	  start_date = excluded.start_date,
	  end_date = excluded.end_date,
	  replaced = excluded.replaced,
	  wikidata = excluded.wikidata`,
		m.ID, m.Term, m.Name, m.WikipediaTitle,
		nullableString(m.Party), m.Source,
		nullableString(m.Area), nullableString(m.AreaID),
		nullableString(m.StartDate), nullableString(m.EndDate),
		nullableString(m.Replaced), nullableString(m.Wikidata))
	if err != nil {
		return fmt.Errorf("upsert member %s/%d: %w", m.ID, m.Term, err)
	}
	return nil
}

// UpsertTerm records a scraped term, replacing an earlier record for the same id.
func UpsertTerm(db DBExecutor, t Term) error {
	if t.ID <= 0 {
		return fmt.Errorf("term id must be positive, got %d", t.ID)
	}
	_, err := db.Exec(`INSERT INTO terms (id, url, title, member_count, scraped_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	  url = excluded.url,
	  title = COALESCE(excluded.title, terms.title),
	  member_count = excluded.member_count,
	  scraped_at = excluded.scraped_at`,
		t.ID, t.URL, nullableString(t.Title), t.MemberCount, t.ScrapedAt)
	if err != nil {
		return fmt.Errorf("upsert term %d: %w", t.ID, err)
	}
	return nil
}

// nullableString returns nil for "" (meaning absent) else the value.
func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// GetMembersByTerm returns the members stored for a term ordered by id.
func GetMembersByTerm(db DBExecutor, term int) ([]Member, error) {
	rows, err := db.Query(`SELECT id, term, name, wikipedia_title, party, source, area, area_id, start_date, end_date, replaced, wikidata
	FROM members WHERE term = ? ORDER BY id`, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		var party, area, areaID, start, end, replaced, wikidata sql.NullString
		if err := rows.Scan(&m.ID, &m.Term, &m.Name, &m.WikipediaTitle, &party, &m.Source,
			&area, &areaID, &start, &end, &replaced, &wikidata); err != nil {
			return nil, err
		}
		m.Party = party.String
		m.Area = area.String
		m.AreaID = areaID.String
		m.StartDate = start.String
		m.EndDate = end.String
		m.Replaced = replaced.String
		m.Wikidata = wikidata.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTerm returns the stored record for a term.
func GetTerm(db DBExecutor, id int) (Term, error) {
	var t Term
	var title sql.NullString
	err := db.QueryRow(`SELECT id, url, title, member_count, scraped_at FROM terms WHERE id = ?`, id).
		Scan(&t.ID, &t.URL, &title, &t.MemberCount, &t.ScrapedAt)
	if err != nil {
		return Term{}, err
	}
	t.Title = title.String
	return t, nil
}
