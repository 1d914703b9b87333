package judge

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default query topics that historically move BTC flows.
var defaultNewsQueries = []string{
	"bitcoin regulation",
	"bitcoin sanctions",
	"banking crisis",
	"currency devaluation",
	"central bank digital currency",
	"capital controls crypto",
}

// GoogleNewsFetcher pulls recent English-language headlines from the
// Google News RSS search feed and formats them as judgment items.
type GoogleNewsFetcher struct {
	Queries      []string
	MaxHeadlines int
	Client       *http.Client
}

// NewGoogleNewsFetcher creates a fetcher with optional proxy support.
func NewGoogleNewsFetcher(queries []string, maxHeadlines int, proxyURL string) *GoogleNewsFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if len(queries) == 0 {
		queries = defaultNewsQueries
	}
	if maxHeadlines <= 0 {
		maxHeadlines = 30
	}
	return &GoogleNewsFetcher{
		Queries:      queries,
		MaxHeadlines: maxHeadlines,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

type rssFeed struct {
	Items []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Source      string `xml:"source"`
	PubDate     string `xml:"pubDate"`
}

// FetchItems runs one RSS search with an OR-joined query.
func (f *GoogleNewsFetcher) FetchItems() ([]string, error) {
	params := url.Values{}
	params.Set("q", strings.Join(f.Queries, " OR "))
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	endpoint := "https://news.google.com/rss/search?" + params.Encode()

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "dcapilot/1.0 (geopolitical analysis)")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch news feed: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read news feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	items := make([]string, 0, len(feed.Items))
	for _, it := range feed.Items {
		if len(items) >= f.MaxHeadlines {
			break
		}
		source := it.Source
		if source == "" {
			source = "unknown"
		}
		items = append(items, fmt.Sprintf("[%s] (%s)\n%s\n%s", source, it.PubDate, it.Title, it.Description))
	}
	return items, nil
}
