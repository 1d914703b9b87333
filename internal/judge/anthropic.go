package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"DCAPilot/internal/agent"
	"DCAPilot/internal/calculator"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicJudge scores a batch of textual items through the Anthropic
// messages API. The model is instructed to return JSON carrying a bounded
// score, a confidence, and a short reasoning; ScoreField selects which
// JSON field holds the score ("sentiment" for posts, "score" for
// headlines).
type AnthropicJudge struct {
	APIKey     string
	Model      string
	System     string
	ScoreField string
	UserIntro  string
	MaxTokens  int

	limiter *RateLimiter
	client  *http.Client
}

// NewAnthropicJudge builds a judge. limiter may be shared between judges
// so all outbound calls count against one window.
func NewAnthropicJudge(apiKey, model, system, scoreField, userIntro string, limiter *RateLimiter, proxyURL string) *AnthropicJudge {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AnthropicJudge{
		APIKey:     apiKey,
		Model:      model,
		System:     system,
		ScoreField: scoreField,
		UserIntro:  userIntro,
		MaxTokens:  300,
		limiter:    limiter,
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
	}
}

// Judge sends the items to the model and parses its JSON reply.
func (j *AnthropicJudge) Judge(items []string) (agent.Judgment, error) {
	if j.APIKey == "" {
		return agent.Judgment{}, fmt.Errorf("no API key configured")
	}

	prompt := fmt.Sprintf("%s\n\n%s\n\nReturn JSON.", fmt.Sprintf(j.UserIntro, len(items)), strings.Join(items, "\n\n"))
	payload := map[string]any{
		"model":      j.Model,
		"max_tokens": j.MaxTokens,
		"system":     j.System,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return agent.Judgment{}, fmt.Errorf("marshal request: %w", err)
	}

	if j.limiter != nil {
		j.limiter.Wait()
	}

	req, err := http.NewRequest("POST", anthropicURL, bytes.NewReader(body))
	if err != nil {
		return agent.Judgment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", j.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := j.client.Do(req)
	if err != nil {
		return agent.Judgment{}, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return agent.Judgment{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return agent.Judgment{}, fmt.Errorf("model API status %d: %s", resp.StatusCode, string(respBody))
	}

	text := gjson.GetBytes(respBody, "content.0.text").String()
	return parseJudgment(text, j.ScoreField)
}

// parseJudgment extracts (score, confidence, reasoning) from the model's
// reply, tolerating markdown code fences around the JSON.
func parseJudgment(text, scoreField string) (agent.Judgment, error) {
	raw := stripFences(text)
	if !gjson.Valid(raw) {
		return agent.Judgment{}, fmt.Errorf("model reply is not valid JSON: %q", truncate(raw, 120))
	}
	parsed := gjson.Parse(raw)
	score := parsed.Get(scoreField)
	if !score.Exists() {
		return agent.Judgment{}, fmt.Errorf("model reply missing %q field", scoreField)
	}
	return agent.Judgment{
		Score:      calculator.Clip(score.Float(), -1.0, 1.0),
		Confidence: calculator.Clip(parsed.Get("confidence").Float(), 0.0, 1.0),
		Reasoning:  parsed.Get("reasoning").String(),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SentimentSystemPrompt instructs the model to score social-post
// sentiment. The reply field is "sentiment".
const SentimentSystemPrompt = `You are a Bitcoin market sentiment analyst. You will be given a batch of recent Reddit posts from Bitcoin-related subreddits. Assess the overall market sentiment expressed in these posts.

Return ONLY valid JSON with exactly these fields:
{
  "sentiment": <float from -1.0 (extreme fear) to 1.0 (extreme greed)>,
  "confidence": <float from 0.0 to 1.0 indicating how confident you are>,
  "reasoning": "<1-2 sentence summary of the sentiment you detected>"
}

Guidelines:
- Extreme fear/panic selling language: sentiment near -1.0
- Cautious/worried tone: sentiment -0.3 to -0.7
- Neutral/mixed: sentiment near 0.0
- Optimistic/bullish: sentiment +0.3 to +0.7
- Euphoria/FOMO/moon language: sentiment near +1.0
- If posts are few or uninformative, set confidence low (0.2-0.4)
- Weight highly-upvoted posts more heavily than low-score posts`

// GeopoliticalSystemPrompt instructs the model to score macro headlines.
// The reply field is "score".
const GeopoliticalSystemPrompt = `You are a geopolitical analyst specialising in how macro events affect Bitcoin.

You will receive recent news headlines. Assess the overall geopolitical environment for Bitcoin based on these headlines.

Focus on events that historically drive BTC capital flows:
- Banking instability or bank failures (positive for BTC)
- Currency devaluation or capital controls (positive)
- Regulatory clarity or pro-crypto legislation (positive)
- War, sanctions, or geopolitical tension (mildly positive, safe-haven flows)
- Regulatory crackdowns, bans, or enforcement actions (negative)
- Central bank hawkishness / rate hikes (negative)

Return ONLY valid JSON with exactly these fields:
{
  "score": <float from -1.0 (very negative for BTC) to 1.0 (very positive for BTC)>,
  "confidence": <float from 0.0 to 1.0>,
  "reasoning": "<2-3 sentence summary of the key geopolitical factors>"
}

If headlines are irrelevant or too few to judge, set confidence below 0.3.`
