package sejm

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ErrMissingStructure is returned when a heading or table the page layout
// is expected to contain cannot be found.
var ErrMissingStructure = errors.New("missing expected structure")

// Document is a parsed term article with the queries the extractors need.
type Document struct {
	doc *goquery.Document

	districts *districtIndex
	fragments map[string]string
}

// NewDocument parses an HTML page.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) root() *html.Node {
	return d.doc.Nodes[0]
}

// Heading returns the first heading of the given level (h2, h3) whose text
// contains text. A heading wrapped in a div.mw-heading is returned as its
// wrapper, since that is the element the section's tables are siblings of.
func (d *Document) Heading(tag, text string) (*goquery.Selection, error) {
	expr := fmt.Sprintf("//%s[contains(., %s)]", tag, xpathLiteral(text))
	node, err := htmlquery.Query(d.root(), expr)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", expr, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: no <%s> containing %q", ErrMissingStructure, tag, text)
	}
	heading := d.doc.FindNodes(node)
	if parent := heading.Parent(); parent.HasClass("mw-heading") {
		return parent, nil
	}
	return heading, nil
}

// TableAfterHeading returns the n-th (0-based) table among the siblings
// following the heading located by Heading.
func (d *Document) TableAfterHeading(tag, text string, n int) (*goquery.Selection, error) {
	heading, err := d.Heading(tag, text)
	if err != nil {
		return nil, err
	}
	tables := heading.NextAllFiltered("table")
	if tables.Length() <= n {
		return nil, fmt.Errorf("%w: table #%d after <%s> containing %q", ErrMissingStructure, n+1, tag, text)
	}
	return tables.Eq(n), nil
}

// Fragment dereferences an in-page link ("#cite_note-3") and returns the
// text of the element with that id. Ids are indexed on the first call.
func (d *Document) Fragment(href string) (string, bool) {
	id, ok := strings.CutPrefix(href, "#")
	if !ok || id == "" {
		return "", false
	}
	unescaped, err := url.PathUnescape(id)
	if err != nil {
		unescaped = id
	}
	if d.fragments == nil {
		d.fragments = make(map[string]string)
		d.doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
			v := s.AttrOr("id", "")
			if _, seen := d.fragments[v]; !seen {
				d.fragments[v] = s.Text()
			}
		})
	}
	if text, ok := d.fragments[id]; ok {
		return text, true
	}
	text, ok := d.fragments[unescaped]
	return text, ok
}

// rows returns the table's own rows, skipping rows of nested tables.
func rows(table *goquery.Selection) *goquery.Selection {
	own := table.Get(0)
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").Get(0) == own
	})
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + s + "'"
}
