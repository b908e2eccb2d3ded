package sejm

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Footnote text recording the oath, e.g. "Ślubowała 15 marca 2008 r."
var oathPattern = regexp.MustCompile(`Ślubowała? (\d+)\s+(.*?)\s+(\d+)`)

// CurrentMembers reads the club membership table ("Przynależność klubowa").
//
// Each header row names a club; the row after it is painted in the club's
// color and the row after that lists the members. Members come out in page
// order. The returned PartyColors maps the colors seen to their clubs and is
// what ExpiredMembers needs to attribute parties.
func CurrentMembers(doc *Document, source string, term int) ([]Member, PartyColors, error) {
	table, err := doc.TableAfterHeading("h2", "klubowa", 0)
	if err != nil {
		return nil, nil, err
	}

	colors := PartyColors{}
	var members []Member
	var walkErr error
	rows(table).EachWithBreak(func(_ int, club *goquery.Selection) bool {
		th := club.ChildrenFiltered("th")
		if th.Length() == 0 {
			return true
		}
		party := Tidy(th.Text())
		following := club.NextAllFiltered("tr")
		if color, ok := backgroundColor(following.Eq(0).ChildrenFiltered("td").First()); ok {
			colors.Set(color, party)
		}

		following.Eq(1).Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			m, ok, err := currentMember(doc, li, party, source, term)
			if err != nil {
				walkErr = err
				return false
			}
			if ok {
				members = append(members, m)
			}
			return true
		})
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}
	return members, colors, nil
}

func currentMember(doc *Document, li *goquery.Selection, party, source string, term int) (Member, bool, error) {
	a, ok := firstAnchor(li)
	if !ok {
		return Member{}, false, nil
	}
	m := newMember(a, term, source)
	m.Party = party

	district, ok, err := doc.District(a)
	if err != nil {
		return Member{}, false, err
	}
	if ok {
		m.setDistrict(district)
	}

	if href, ok := li.Find("sup a").First().Attr("href"); ok {
		if note, ok := doc.Fragment(href); ok {
			date, ok, err := oathDate(note)
			if err != nil {
				return Member{}, false, fmt.Errorf("%s: %w", a.Title, err)
			}
			if ok {
				m.StartDate = date
			}
		}
	}
	return m, true, nil
}

// oathDate parses the oath footnote into an ISO date. ok is false when the
// note does not record an oath; an unknown month name is an error.
func oathDate(note string) (string, bool, error) {
	match := oathPattern.FindStringSubmatch(note)
	if match == nil {
		return "", false, nil
	}
	month, err := Month(lowerPolish(match[2]))
	if err != nil {
		return "", false, err
	}
	day, err := strconv.Atoi(match[1])
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%s-%02d-%02d", match[3], month, day), true, nil
}
