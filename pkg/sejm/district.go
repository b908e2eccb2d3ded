package sejm

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// District is an electoral district a member was elected in.
type District struct {
	ID   string
	Name string
}

// Area is the "name id" composite stored with a member.
func (d District) Area() string {
	return d.Name + " " + d.ID
}

// AreaID is the "id-term" composite key stored with a member.
func (d District) AreaID(term int) string {
	return fmt.Sprintf("%s-%d", d.ID, term)
}

type districtLink struct {
	href     string
	district District
}

// districtIndex lists every link of the election results table, in document
// order, with the district of the row it sits in.
type districtIndex struct {
	links []districtLink
}

// District finds the electoral district whose results row links to the
// anchor's target. The results table is the second table after the
// section about electoral districts ("okręgach wyborczych").
// ok is false when no row links there; err is set only when the results
// table itself is missing.
func (d *Document) District(a Anchor) (District, bool, error) {
	if d.districts == nil {
		idx, err := d.indexDistricts()
		if err != nil {
			return District{}, false, err
		}
		d.districts = idx
	}
	if a.Href == "" {
		return District{}, false, nil
	}
	for _, l := range d.districts.links {
		if strings.Contains(l.href, a.Href) {
			return l.district, true, nil
		}
	}
	return District{}, false, nil
}

func (d *Document) indexDistricts() (*districtIndex, error) {
	table, err := d.TableAfterHeading("h2", "wyborczych", 1)
	if err != nil {
		return nil, err
	}

	type pending struct {
		href string
		row  *html.Node
	}
	var found []pending
	ids := map[*html.Node]string{}
	table.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		tr := a.Closest("tr")
		if tr.Length() == 0 {
			return
		}
		row := tr.Get(0)
		if _, seen := ids[row]; !seen {
			ids[row] = Tidy(tr.ChildrenFiltered("td").First().Text())
		}
		found = append(found, pending{href: a.AttrOr("href", ""), row: row})
	})

	names := d.precedingHeadlines(ids)
	idx := &districtIndex{links: make([]districtLink, 0, len(found))}
	for _, p := range found {
		idx.links = append(idx.links, districtLink{
			href:     p.href,
			district: District{ID: ids[p.row], Name: names[p.row]},
		})
	}
	return idx, nil
}

// precedingHeadlines walks the page once in document order and returns, for
// each wanted row, the headline of the closest <h3> before it.
func (d *Document) precedingHeadlines(wanted map[*html.Node]string) map[*html.Node]string {
	out := make(map[*html.Node]string, len(wanted))
	var current string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h3":
				current = d.headline(n)
			case "tr":
				if _, ok := wanted[n]; ok {
					out[n] = current
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root())
	return out
}

// headline is the text of the heading's span.mw-headline, or of the heading
// itself on skins that no longer emit the span.
func (d *Document) headline(h3 *html.Node) string {
	heading := d.doc.FindNodes(h3)
	if span := heading.Find("span.mw-headline"); span.Length() > 0 {
		return Tidy(span.First().Text())
	}
	return Tidy(heading.Text())
}
