package sejm

import (
	"github.com/PuerkitoBio/goquery"
)

// ExpiredMembers reads the table of members whose mandate expired
// ("Posłowie, których mandat wygasł").
//
// A row whose first cell is empty carries the club color in that cell; rows
// without it share the color of the row above. The party comes from colors,
// built by CurrentMembers on the same page, and stays empty for a color the
// club table never used. District fields describe the seat, found through
// the member who took it over.
func ExpiredMembers(doc *Document, source string, term int, colors PartyColors) ([]Member, error) {
	table, err := doc.TableAfterHeading("h3", "mandat wygasł", 0)
	if err != nil {
		return nil, err
	}

	var members []Member
	var color string
	var walkErr error
	rows(table).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() == 0 {
			return true
		}
		if Tidy(tds.First().Text()) == "" {
			color, _ = backgroundColor(tds.First())
			tds = tds.Slice(1, goquery.ToEnd)
		}
		a, ok := firstAnchor(tds.Eq(0))
		if !ok {
			return true
		}

		m := newMember(a, term, source)
		m.Party = colors.Party(color)
		m.EndDate = Tidy(tds.Eq(1).Find("span").Text())

		successor, ok := firstAnchor(tds.Last())
		if ok {
			m.Replaced = successor.Title
			district, found, err := doc.District(successor)
			if err != nil {
				walkErr = err
				return false
			}
			if found {
				m.setDistrict(district)
			}
		}
		members = append(members, m)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return members, nil
}

// Extract runs both extractors over one term's page and returns the current
// members followed by the expired ones.
func Extract(doc *Document, source string, term int) ([]Member, error) {
	current, colors, err := CurrentMembers(doc, source, term)
	if err != nil {
		return nil, err
	}
	expired, err := ExpiredMembers(doc, source, term, colors)
	if err != nil {
		return nil, err
	}
	return append(current, expired...), nil
}
