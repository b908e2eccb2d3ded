package wikidata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is the Polish Wikipedia API the member titles belong to.
const DefaultEndpoint = "https://pl.wikipedia.org/w/api.php"

// DefaultBatchSize is the number of titles the API accepts per query for
// anonymous clients.
const DefaultBatchSize = 50

// ErrLookup is returned when a lookup request fails or the API reports an error.
var ErrLookup = errors.New("identifier lookup failed")

// Resolver maps Wikipedia article titles to Wikidata item ids through the
// MediaWiki pageprops query.
type Resolver struct {
	HTTP      *resty.Client
	Endpoint  string
	BatchSize int
	// Logger is used for per-batch debug messages. nil means slog.Default().
	Logger *slog.Logger
}

// NewResolver creates a Resolver for endpoint using client.
func NewResolver(client *resty.Client, endpoint string) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Resolver{
		HTTP:      client,
		Endpoint:  endpoint,
		BatchSize: DefaultBatchSize,
	}
}

type queryResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Query struct {
		Normalized []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"normalized"`
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title     string `json:"title"`
	PageProps *struct {
		WikibaseItem string `json:"wikibase_item"`
	} `json:"pageprops"`
}

// Resolve looks titles up in batches of BatchSize and returns title -> item id
// for every title that has one. Blank and repeated titles are skipped.
// Any failed batch fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, titles []string) (map[string]string, error) {
	size := r.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	unique := dedupe(titles)
	ids := make(map[string]string, len(unique))
	for start := 0; start < len(unique); start += size {
		end := min(start+size, len(unique))
		batch := unique[start:end]
		if err := r.resolveBatch(ctx, batch, ids); err != nil {
			return nil, err
		}
		logger.Debug("resolved identifier batch", "titles", len(batch), "total", len(ids))
	}
	return ids, nil
}

func (r *Resolver) resolveBatch(ctx context.Context, batch []string, ids map[string]string) error {
	var out queryResponse
	res, err := r.HTTP.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "query",
			"format":   "json",
			"prop":     "pageprops",
			"ppprop":   "wikibase_item",
			"titles":   strings.Join(batch, "|"),
			"continue": "",
		}).
		SetResult(&out).
		Get(r.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s returned %s", ErrLookup, r.Endpoint, res.Status())
	}
	if out.Error != nil {
		return fmt.Errorf("%w: %s: %s", ErrLookup, out.Error.Code, out.Error.Info)
	}

	for _, p := range out.Query.Pages {
		if p.PageProps == nil {
			continue
		}
		ids[p.Title] = p.PageProps.WikibaseItem
	}
	// A title the API rewrote ("anna nowak" -> "Anna nowak") is also
	// answered under the form it was asked for.
	for _, n := range out.Query.Normalized {
		if id, ok := ids[n.To]; ok {
			ids[n.From] = id
		}
	}
	return nil
}

func dedupe(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if strings.TrimSpace(t) == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
