package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/searchctx"
)

const naverAPIBase = "https://openapi.naver.com/v1/search"

// naverEndpoints maps a source type to the Naver Open API search vertical.
// Blog search stands in for the social source; it is where Korean store
// owners actually write about their shops.
var naverEndpoints = map[searchctx.SourceType]string{
	searchctx.SourceWeb:  "webkr.json",
	searchctx.SourceNews: "news.json",
	searchctx.SourceSNS:  "blog.json",
}

type naverResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Description string `json:"description"`
	} `json:"items"`
}

// NaverProvider queries one vertical of the Naver Open API.
type NaverProvider struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	sourceType   searchctx.SourceType
	display      int
}

func NewNaverProvider(client *http.Client, clientID, clientSecret string, sourceType searchctx.SourceType) (*NaverProvider, error) {
	if _, ok := naverEndpoints[sourceType]; !ok {
		return nil, fmt.Errorf("no naver endpoint for source type %q", sourceType)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NaverProvider{
		client:       client,
		baseURL:      naverAPIBase,
		clientID:     clientID,
		clientSecret: clientSecret,
		sourceType:   sourceType,
		display:      10,
	}, nil
}

func (p *NaverProvider) Type() searchctx.SourceType {
	return p.sourceType
}

func (p *NaverProvider) Search(ctx context.Context, query string) ([]searchctx.RawResult, error) {
	endpoint := fmt.Sprintf("%s/%s?query=%s&display=%d",
		p.baseURL, naverEndpoints[p.sourceType], url.QueryEscape(query), p.display)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", p.clientID)
	req.Header.Set("X-Naver-Client-Secret", p.clientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver %s search: %w", p.sourceType, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver %s search: status %d", p.sourceType, resp.StatusCode)
	}

	var decoded naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode naver response: %w", err)
	}

	results := make([]searchctx.RawResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		results = append(results, searchctx.RawResult{
			Title:   stripMarkup(item.Title),
			Snippet: stripMarkup(item.Description),
			URL:     item.Link,
		})
	}
	return results, nil
}

var markupPattern = regexp.MustCompile(`</?b>|&quot;|&amp;|&lt;|&gt;`)

// stripMarkup removes the highlight tags and entities Naver embeds in titles
// and descriptions.
func stripMarkup(s string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllStringFunc(s, func(m string) string {
		switch m {
		case "&quot;":
			return `"`
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		default:
			return ""
		}
	}))
}
