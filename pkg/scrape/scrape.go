package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-shiori/go-readability"
	"github.com/japaniel/poslowie/pkg/config"
	"github.com/japaniel/poslowie/pkg/db"
	"github.com/japaniel/poslowie/pkg/sejm"
)

// Fetcher returns the body of a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Resolver maps article titles to Wikidata ids, omitting unknown titles.
type Resolver interface {
	Resolve(ctx context.Context, titles []string) (map[string]string, error)
}

// Store persists one term's members.
type Store interface {
	Save(ctx context.Context, term db.Term, members []sejm.Member) (int, error)
}

// Scraper processes terms one at a time: fetch the article, extract the
// members, attach Wikidata ids and save.
type Scraper struct {
	Fetcher  Fetcher
	Resolver Resolver
	Store    Store

	// Out receives the id of each term as it starts. nil means os.Stdout.
	Out io.Writer
	// KeepGoing continues with the next term after a failure; the failures
	// are returned together at the end.
	KeepGoing bool
	Logger    *slog.Logger
	Now       func() time.Time
}

// Run scrapes terms from the highest id down. By default the first failing
// term stops the run.
func (s *Scraper) Run(ctx context.Context, terms []config.Term) error {
	logger := s.logger()
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	banner := lipgloss.NewRenderer(out).NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	ordered := slices.Clone(terms)
	slices.SortFunc(ordered, func(a, b config.Term) int { return b.ID - a.ID })

	var errs []error
	for _, term := range ordered {
		fmt.Fprintln(out, banner.Render(strconv.Itoa(term.ID)))

		n, err := s.ScrapeTerm(ctx, term)
		if err != nil {
			err = fmt.Errorf("term %d: %w", term.ID, err)
			if !s.KeepGoing {
				return err
			}
			logger.Error("term failed, continuing", "term", term.ID, "err", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("term saved", "term", term.ID, "members", n)
	}
	return errors.Join(errs...)
}

// ScrapeTerm processes a single term and returns the number of members saved.
func (s *Scraper) ScrapeTerm(ctx context.Context, term config.Term) (int, error) {
	logger := s.logger().With("term", term.ID)

	body, err := s.Fetcher.Fetch(ctx, term.URL)
	if err != nil {
		return 0, err
	}
	doc, err := sejm.NewDocument(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	members, err := sejm.Extract(doc, term.URL, term.ID)
	if err != nil {
		return 0, err
	}

	titles := make([]string, 0, len(members))
	for _, m := range members {
		titles = append(titles, m.WikipediaTitle)
	}
	ids, err := s.Resolver.Resolve(ctx, titles)
	if err != nil {
		return 0, err
	}
	for i := range members {
		members[i].Wikidata = ids[members[i].WikipediaTitle]
		logger.Debug("member",
			"id", members[i].ID,
			"party", members[i].Party,
			"area_id", members[i].AreaID,
			"wikidata", members[i].Wikidata)
	}

	record := db.Term{
		ID:        term.ID,
		URL:       term.URL,
		Title:     articleTitle(body, term.URL, logger),
		ScrapedAt: s.now(),
	}
	return s.Store.Save(ctx, record, members)
}

// articleTitle extracts the article title; failures only cost the title.
func articleTitle(body []byte, pageURL string, logger *slog.Logger) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		logger.Warn("cannot parse page url for title", "url", pageURL, "err", err)
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		logger.Warn("cannot extract article title", "err", err)
		return ""
	}
	return sejm.Tidy(article.Title)
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Scraper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
