package sejm

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureURL = "https://pl.wikipedia.org/wiki/Pos%C5%82owie_na_Sejm_Rzeczypospolitej_Polskiej_VI_kadencji"

func loadFixture(t *testing.T) *Document {
	t.Helper()
	f, err := os.Open("testdata/term.html")
	require.NoError(t, err)
	defer f.Close()
	doc, err := NewDocument(f)
	require.NoError(t, err)
	return doc
}

func parse(t *testing.T, page string) *Document {
	t.Helper()
	doc, err := NewDocument(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestCurrentMembers(t *testing.T) {
	doc := loadFixture(t)

	members, colors, err := CurrentMembers(doc, fixtureURL, 6)
	require.NoError(t, err)
	require.Len(t, members, 3)

	require.Equal(t, Member{
		ID:             "anna-nowak",
		Name:           "Anna Nowak",
		WikipediaTitle: "Anna Nowak",
		Term:           6,
		Party:          "Klub Parlamentarny A",
		Source:         fixtureURL,
		Area:           "Warszawa 19",
		AreaID:         "19-6",
		StartDate:      "2008-03-15",
	}, members[0])

	kowalski := members[1]
	require.Equal(t, "jan-kowalski-(polityk)", kowalski.ID)
	require.Equal(t, "Klub Parlamentarny A", kowalski.Party)
	require.Empty(t, kowalski.Area)
	require.Empty(t, kowalski.AreaID)
	require.Empty(t, kowalski.StartDate)

	wisniewski := members[2]
	require.Equal(t, "Klub Parlamentarny B", wisniewski.Party)
	require.Equal(t, "Kraków 13", wisniewski.Area)
	require.Equal(t, "13-6", wisniewski.AreaID)

	require.Equal(t, PartyColors{
		"ff0000": "Klub Parlamentarny A",
		"00ff00": "Klub Parlamentarny B",
	}, colors)
}

func TestExpiredMembers(t *testing.T) {
	doc := loadFixture(t)
	colors := PartyColors{"ff0000": "Klub Parlamentarny A"}

	members, err := ExpiredMembers(doc, fixtureURL, 6, colors)
	require.NoError(t, err)
	require.Len(t, members, 3)

	require.Equal(t, Member{
		ID:             "piotr-zieliński",
		Name:           "Piotr Zieliński",
		WikipediaTitle: "Piotr Zieliński",
		Term:           6,
		Party:          "Klub Parlamentarny A",
		Source:         fixtureURL,
		Area:           "Warszawa 19",
		AreaID:         "19-6",
		EndDate:        "2010-05-01",
		Replaced:       "Ewa Wójcik",
	}, members[0])

	// no color cell: keeps the color of the row above
	require.Equal(t, "Klub Parlamentarny A", members[1].Party)
	require.Equal(t, "2011-01-10", members[1].EndDate)
	require.Equal(t, "Krzysztof Mazur", members[1].Replaced)
	require.Empty(t, members[1].Area)

	// color never used by the club table
	require.Empty(t, members[2].Party)
	require.Equal(t, "Adam Nowicki", members[2].Replaced)
}

func TestExtractOrder(t *testing.T) {
	doc := loadFixture(t)

	members, err := Extract(doc, fixtureURL, 6)
	require.NoError(t, err)

	var ids []string
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	require.Equal(t, []string{
		"anna-nowak",
		"jan-kowalski-(polityk)",
		"marek-wiśniewski",
		"piotr-zieliński",
		"tomasz-lewandowski",
		"zofia-dąbrowska",
	}, ids)
}

const twoClubsPage = `<html><body>
<h2>Przynależność klubowa</h2>
<table>
<tr><th>Party A</th></tr>
<tr><td style="background:#ff0000"></td></tr>
<tr><td><ul><li><a href="/wiki/A1" title="A One">A One</a></li><li><a href="/wiki/A2" title="A Two">A Two</a></li></ul></td></tr>
<tr><th>Party B</th></tr>
<tr><td style="background:#00ff00"></td></tr>
<tr><td><ul><li><a href="/wiki/B1" title="B One">B One</a></li></ul></td></tr>
</table>
<h2>Posłowie według okręgów wyborczych</h2>
<table><tr><td>summary</td></tr></table>
<table>
<tr><td><h3><span class="mw-headline">Gdańsk</span></h3>
<table><tr><td>25</td><td><a href="/wiki/A2" title="A Two">A Two</a></td></tr></table>
</td></tr>
</table>
<h3>Posłowie, których mandat wygasł</h3>
<table>
<tr><td style="background:#00ff00"></td><td><a href="/wiki/X1" title="X One">X One</a></td><td><span>1 maja 2010</span></td><td><a href="/wiki/Y1" title="Y One">Y One</a></td></tr>
<tr><td><a href="/wiki/X2" title="X Two">X Two</a></td><td><span>2 maja 2010</span></td><td><a href="/wiki/Y2" title="Y Two">Y Two</a></td></tr>
<tr><td><a href="/wiki/X3" title="X Three">X Three</a></td><td><span>3 maja 2010</span></td><td><a href="/wiki/A2" title="A Two">A Two</a></td></tr>
</table>
</body></html>`

func TestCurrentMembersPartyByDocumentOrder(t *testing.T) {
	doc := parse(t, twoClubsPage)

	members, colors, err := CurrentMembers(doc, "http://x", 3)
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, "Party A", members[0].Party)
	require.Equal(t, "Party A", members[1].Party)
	require.Equal(t, "Party B", members[2].Party)
	require.Equal(t, "Party B", colors.Party("00FF00"))

	require.Empty(t, members[0].Area)
	require.Empty(t, members[0].AreaID)
	require.Equal(t, "Gdańsk 25", members[1].Area)
	require.Equal(t, "25-3", members[1].AreaID)
	require.Empty(t, members[2].Area)
	require.Empty(t, members[2].AreaID)
}

func TestExpiredMembersCarryColorForward(t *testing.T) {
	doc := parse(t, twoClubsPage)
	_, colors, err := CurrentMembers(doc, "http://x", 3)
	require.NoError(t, err)

	members, err := ExpiredMembers(doc, "http://x", 3, colors)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for _, m := range members {
		require.Equal(t, "Party B", m.Party, m.ID)
	}
	require.Equal(t, "3 maja 2010", members[2].EndDate)
	require.Equal(t, "Gdańsk 25", members[2].Area)
	require.Equal(t, "25-3", members[2].AreaID)
}

func TestColorsDoNotLeakBetweenPages(t *testing.T) {
	doc := parse(t, twoClubsPage)

	members, err := ExpiredMembers(doc, "http://x", 3, PartyColors{})
	require.NoError(t, err)
	for _, m := range members {
		require.Empty(t, m.Party, m.ID)
	}
}

func TestMissingStructure(t *testing.T) {
	doc := parse(t, `<html><body><h2>Inna sekcja</h2><table></table></body></html>`)

	_, _, err := CurrentMembers(doc, "http://x", 1)
	require.ErrorIs(t, err, ErrMissingStructure)
	require.Contains(t, err.Error(), "klubowa")

	_, err = ExpiredMembers(doc, "http://x", 1, PartyColors{})
	require.ErrorIs(t, err, ErrMissingStructure)
	require.Contains(t, err.Error(), "mandat wygasł")
}

func TestMissingDistrictTable(t *testing.T) {
	doc := parse(t, `<html><body>
<h2>Przynależność klubowa</h2>
<table>
<tr><th>Party A</th></tr>
<tr><td style="background:#ff0000"></td></tr>
<tr><td><ul><li><a href="/wiki/A1" title="A One">A One</a></li></ul></td></tr>
</table></body></html>`)

	_, _, err := CurrentMembers(doc, "http://x", 1)
	require.ErrorIs(t, err, ErrMissingStructure)
	require.Contains(t, err.Error(), "wyborczych")
}

func TestUnknownMonthInFootnoteFails(t *testing.T) {
	doc := parse(t, `<html><body>
<h2>Przynależność klubowa</h2>
<table>
<tr><th>Party A</th></tr>
<tr><td style="background:#ff0000"></td></tr>
<tr><td><ul><li><a href="/wiki/A1" title="A One">A One</a><sup><a href="#cite_note-1">[1]</a></sup></li></ul></td></tr>
</table>
<h2>Posłowie według okręgów wyborczych</h2><table></table><table></table>
<ol><li id="cite_note-1">Ślubował 1 smarca 2001</li></ol>
</body></html>`)

	_, _, err := CurrentMembers(doc, "http://x", 1)
	require.ErrorIs(t, err, ErrUnknownMonth)
}

func TestModernHeadingMarkup(t *testing.T) {
	doc := parse(t, `<html><body>
<div class="mw-heading mw-heading2"><h2 id="Przynależność_klubowa">Przynależność klubowa</h2></div>
<table>
<tr><th>Party A</th></tr>
<tr><td style="background-color:#AbCdEf"></td></tr>
<tr><td><ul><li><a href="/wiki/A1" title="A One">A One</a></li></ul></td></tr>
</table>
<div class="mw-heading mw-heading2"><h2 id="Okręgi">Posłowie według okręgów wyborczych</h2></div>
<table></table>
<table><tr><td>
<div class="mw-heading mw-heading3"><h3 id="Opole">Opole</h3></div>
<table><tr><td>21</td><td><a href="/wiki/A1" title="A One">A One</a></td></tr></table>
</td></tr></table>
</body></html>`)

	members, colors, err := CurrentMembers(doc, "http://x", 7)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Opole 21", members[0].Area)
	require.Equal(t, "21-7", members[0].AreaID)
	require.Equal(t, "Party A", colors.Party("abcdef"))
}

func TestFragment(t *testing.T) {
	doc := loadFixture(t)

	text, ok := doc.Fragment("#cite_note-1")
	require.True(t, ok)
	require.Contains(t, text, "Ślubowała 15 marca 2008")

	_, ok = doc.Fragment("#cite_note-99")
	require.False(t, ok)
	_, ok = doc.Fragment("cite_note-1")
	require.False(t, ok)
	_, ok = doc.Fragment("#")
	require.False(t, ok)
}

func TestFragmentIndexedOnce(t *testing.T) {
	doc, err := NewDocument(strings.NewReader(`<html><body>
<p><sup><a href="#cite_note-Śl">[1]</a></sup></p>
<ol><li id="cite_note-Śl">Ślubował 1 lipca 2011</li><li id="cite_note-2">drugi</li></ol>
</body></html>`))
	require.NoError(t, err)

	text, ok := doc.Fragment("#cite_note-%C5%9Al")
	require.True(t, ok)
	require.Equal(t, "Ślubował 1 lipca 2011", text)
	require.NotNil(t, doc.fragments)

	doc.doc.Find("#cite_note-2").Remove()
	text, ok = doc.Fragment("#cite_note-2")
	require.True(t, ok, "ids are read from the index built on first use")
	require.Equal(t, "drugi", text)
}

func TestDistrictUnknownAnchor(t *testing.T) {
	doc := loadFixture(t)

	_, ok, err := doc.District(Anchor{Href: "/wiki/Nikt"})
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = doc.District(Anchor{})
	require.NoError(t, err)
	require.False(t, ok)

	d, ok, err := doc.District(Anchor{Href: "/wiki/Ewa_W%C3%B3jcik"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, District{ID: "19", Name: "Warszawa"}, d)
}
