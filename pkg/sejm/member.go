package sejm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Member is one legislator's tenure segment within one term.
// Empty optional fields mean the value is absent.
type Member struct {
	ID             string
	Name           string
	WikipediaTitle string
	Term           int
	Party          string
	Source         string
	Area           string
	AreaID         string
	StartDate      string
	EndDate        string
	Replaced       string
	Wikidata       string
}

func newMember(a Anchor, term int, source string) Member {
	return Member{
		ID:             Slug(a.Title),
		Name:           a.Text,
		WikipediaTitle: a.Title,
		Term:           term,
		Source:         source,
	}
}

func (m *Member) setDistrict(d District) {
	m.Area = d.Area()
	m.AreaID = d.AreaID(m.Term)
}

// Anchor is a link to a member's article; its href joins membership lists
// with the district tables.
type Anchor struct {
	Href  string
	Title string
	Text  string
}

// firstAnchor returns the first link inside sel.
func firstAnchor(sel *goquery.Selection) (Anchor, bool) {
	a := sel.Find("a").First()
	if a.Length() == 0 {
		return Anchor{}, false
	}
	return Anchor{
		Href:  a.AttrOr("href", ""),
		Title: a.AttrOr("title", ""),
		Text:  Tidy(a.Text()),
	}, true
}

// PartyColors maps a row background color to the party it marks.
// It is built while reading the club membership table and consulted for the
// expired mandates table of the same page.
type PartyColors map[string]string

// Set records party for color, replacing any earlier party.
func (pc PartyColors) Set(color, party string) {
	if color == "" {
		return
	}
	pc[strings.ToLower(color)] = party
}

// Party returns the party for color, or "" when the color was never seen.
func (pc PartyColors) Party(color string) string {
	if color == "" {
		return ""
	}
	return pc[strings.ToLower(color)]
}

var backgroundPattern = regexp.MustCompile(`(?i)background(?:-color)?:\s*#(\w+)`)

// backgroundColor extracts the hex background color from a cell's inline style.
func backgroundColor(cell *goquery.Selection) (string, bool) {
	style, ok := cell.Attr("style")
	if !ok {
		return "", false
	}
	m := backgroundPattern.FindStringSubmatch(style)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}
