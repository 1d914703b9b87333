package judge

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const redditUserAgent = "dcapilot/1.0 (sentiment analysis)"

// RedditFetcher pulls recent posts from Bitcoin subreddits via Reddit's
// public JSON API and formats them as judgment items.
type RedditFetcher struct {
	Subreddits []string
	MaxPosts   int
	Sort       string
	Client     *http.Client
}

// NewRedditFetcher creates a fetcher with optional proxy support.
func NewRedditFetcher(subreddits []string, maxPosts int, proxyURL string) *RedditFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if len(subreddits) == 0 {
		subreddits = []string{"Bitcoin", "CryptoCurrency", "BitcoinMarkets"}
	}
	if maxPosts <= 0 {
		maxPosts = 50
	}
	return &RedditFetcher{
		Subreddits: subreddits,
		MaxPosts:   maxPosts,
		Sort:       "hot",
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

// FetchItems fetches posts from all configured subreddits. Per-subreddit
// failures are logged and skipped; the caller handles an empty result.
func (f *RedditFetcher) FetchItems() ([]string, error) {
	perSub := f.MaxPosts / len(f.Subreddits)
	if perSub < 10 {
		perSub = 10
	}

	var items []string
	for i, sub := range f.Subreddits {
		endpoint := fmt.Sprintf("https://www.reddit.com/r/%s/%s.json?limit=%d&raw_json=1", sub, f.Sort, perSub)
		body, err := f.get(endpoint)
		if err != nil {
			log.Printf("[WARN] reddit fetch failed for r/%s: %v", sub, err)
			continue
		}
		gjson.GetBytes(body, "data.children").ForEach(func(_, child gjson.Result) bool {
			p := child.Get("data")
			if p.Get("stickied").Bool() {
				return true
			}
			selftext := p.Get("selftext").String()
			if len(selftext) > 500 {
				selftext = selftext[:500]
			}
			item := fmt.Sprintf("r/%s | u/%s | score:%d | comments:%d\n%s",
				sub, p.Get("author").String(), p.Get("score").Int(), p.Get("num_comments").Int(),
				p.Get("title").String())
			if selftext != "" {
				item += "\n" + selftext
			}
			items = append(items, item)
			return true
		})
		// Respect Reddit's 1 req/sec limit for unauthenticated clients.
		if i < len(f.Subreddits)-1 {
			time.Sleep(time.Second)
		}
	}
	return items, nil
}

func (f *RedditFetcher) get(endpoint string) ([]byte, error) {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", redditUserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
