package collector

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"DCAPilot/internal/model"
)

// KrakenFetcher implements Fetcher against Kraken's public REST API, and
// doubles as the order placer when API credentials are configured.
type KrakenFetcher struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Client    *http.Client

	// SymbolMap translates internal symbols to Kraken pair names.
	SymbolMap map[string]string
}

// NewKrakenFetcher creates a fetcher with optional proxy support.
func NewKrakenFetcher(apiKey, apiSecret, proxyURL string) *KrakenFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &KrakenFetcher{
		BaseURL:   "https://api.kraken.com",
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"BTC/USD": "XBTUSD",
			"BTCUSD":  "XBTUSD",
		},
	}
}

func (f *KrakenFetcher) Name() string { return "kraken" }

func (f *KrakenFetcher) pair(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (f *KrakenFetcher) FetchDailyBars(symbol string, days int) ([]model.OHLCV, error) {
	return f.fetchBars(symbol, 1440, days)
}

func (f *KrakenFetcher) FetchWeeklyBars(symbol string, weeks int) ([]model.OHLCV, error) {
	return f.fetchBars(symbol, 10080, weeks)
}

// fetchBars pulls OHLC candles at the given interval (minutes). Kraken
// caps each response at 720 candles, which covers every series the agents
// request.
func (f *KrakenFetcher) fetchBars(symbol string, intervalMin, count int) ([]model.OHLCV, error) {
	since := time.Now().Add(-time.Duration(count*intervalMin) * time.Minute).Unix()
	endpoint := fmt.Sprintf("%s/0/public/OHLC?pair=%s&interval=%d&since=%d",
		f.BaseURL, f.pair(symbol), intervalMin, since)

	body, err := f.get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if apiErr := gjson.GetBytes(body, "error.0"); apiErr.Exists() {
		return nil, fmt.Errorf("fetch bars: kraken error: %s", apiErr.String())
	}

	var bars []model.OHLCV
	gjson.GetBytes(body, "result").ForEach(func(key, value gjson.Result) bool {
		if key.String() == "last" || !value.IsArray() {
			return true
		}
		for _, row := range value.Array() {
			cols := row.Array()
			if len(cols) < 7 {
				continue
			}
			bars = append(bars, model.OHLCV{
				Time:   time.Unix(cols[0].Int(), 0),
				Open:   cols[1].Float(),
				High:   cols[2].Float(),
				Low:    cols[3].Float(),
				Close:  cols[4].Float(),
				Volume: cols[6].Float(),
			})
		}
		return false
	})
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch bars: empty result")
	}

	// Ensure chronological order and trim to the requested count.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	return bars, nil
}

func (f *KrakenFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/0/public/Ticker?pair=%s", f.BaseURL, f.pair(symbol))
	body, err := f.get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	if apiErr := gjson.GetBytes(body, "error.0"); apiErr.Exists() {
		return 0, fmt.Errorf("fetch current price: kraken error: %s", apiErr.String())
	}

	var price float64
	gjson.GetBytes(body, "result").ForEach(func(_, value gjson.Result) bool {
		price = value.Get("c.0").Float() // last trade price
		return false
	})
	if price <= 0 {
		return 0, fmt.Errorf("fetch current price: no ticker data")
	}
	return price, nil
}

// PlaceMarketBuy submits a signed market buy order. Requires API
// credentials.
func (f *KrakenFetcher) PlaceMarketBuy(symbol string, qty float64, leverage int) (fillPrice float64, orderID string, err error) {
	if f.APIKey == "" || f.APISecret == "" {
		return 0, "", fmt.Errorf("place order: missing API credentials")
	}

	path := "/0/private/AddOrder"
	nonce := strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
	form := url.Values{}
	form.Set("nonce", nonce)
	form.Set("pair", f.pair(symbol))
	form.Set("type", "buy")
	form.Set("ordertype", "market")
	form.Set("volume", strconv.FormatFloat(qty, 'f', 8, 64))
	if leverage > 1 {
		form.Set("leverage", strconv.Itoa(leverage))
	}

	sign, err := f.sign(path, nonce, form.Encode())
	if err != nil {
		return 0, "", fmt.Errorf("place order: %w", err)
	}

	req, err := http.NewRequest("POST", f.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", f.APIKey)
	req.Header.Set("API-Sign", sign)

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("place order: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("place order: read response: %w", err)
	}
	if apiErr := gjson.GetBytes(body, "error.0"); apiErr.Exists() {
		return 0, "", fmt.Errorf("place order: kraken error: %s", apiErr.String())
	}

	orderID = gjson.GetBytes(body, "result.txid.0").String()
	if orderID == "" {
		return 0, "", fmt.Errorf("place order: no transaction id returned")
	}
	// Market orders fill immediately; report the current reference price
	// when the response carries no fill price.
	fillPrice = gjson.GetBytes(body, "result.price").Float()
	if fillPrice == 0 {
		fillPrice, err = f.FetchCurrentPrice(symbol)
		if err != nil {
			fillPrice = 0
			err = nil
		}
	}
	return fillPrice, orderID, nil
}

// sign computes Kraken's API-Sign header: HMAC-SHA512 of
// path + SHA256(nonce + postdata) with the base64-decoded secret.
func (f *KrakenFetcher) sign(path, nonce, postData string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(f.APISecret)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	sha := sha256.Sum256([]byte(nonce + postData))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sha[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (f *KrakenFetcher) get(endpoint string) ([]byte, error) {
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
