package dataflows

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
)

// GoogleNewsClient scrapes Google News search results.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewGoogleNewsClient(cfg *config.Config) *GoogleNewsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "google_news")

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; TradingAgents/1.0)")

	return &GoogleNewsClient{
		client: client,
		cache:  NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled),
	}
}

// GoogleNewsParams controls one search.
type GoogleNewsParams struct {
	Query      string `json:"query"`
	Language   string `json:"language"`
	Country    string `json:"country"`
	MaxResults int    `json:"max_results"`
	DaysBack   int    `json:"days_back"`
}

// Search scrapes Google News RSS for matching articles.
func (gn *GoogleNewsClient) Search(params GoogleNewsParams) ([]*NewsArticle, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if params.Language == "" {
		params.Language = "en"
	}
	if params.Country == "" {
		params.Country = "US"
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 20
	}
	if params.DaysBack <= 0 {
		params.DaysBack = 7
	}

	var cached []*NewsArticle
	if gn.cache.Get("google_news", "search", params, &cached) {
		return cached, nil
	}

	query := params.Query
	if params.DaysBack > 0 {
		query = fmt.Sprintf("%s when:%dd", query, params.DaysBack)
	}
	searchURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=%s&gl=%s",
		url.QueryEscape(query), params.Language, params.Country)

	var body []byte
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := gn.client.R().Get(searchURL)
		if err != nil {
			return fmt.Errorf("google news request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("google news: status %d", resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	articles, err := gn.parseRSS(body, params.MaxResults)
	if err != nil {
		return nil, err
	}

	gn.cache.Set("google_news", "search", params, articles)
	return articles, nil
}

// parseRSS extracts items from the Google News RSS feed. goquery's XML-ish
// parsing is lenient enough for the feed's HTML-entity-laden titles.
func (gn *GoogleNewsClient) parseRSS(body []byte, maxResults int) ([]*NewsArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse google news feed: %w", err)
	}

	var articles []*NewsArticle
	doc.Find("item").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(articles) >= maxResults {
			return false
		}
		title := strings.TrimSpace(s.Find("title").Text())
		if title == "" {
			return true
		}
		link := strings.TrimSpace(s.Find("link").Text())
		source := strings.TrimSpace(s.Find("source").Text())
		published, _ := time.Parse(time.RFC1123, strings.TrimSpace(s.Find("pubDate").Text()))
		summary := strings.TrimSpace(s.Find("description").Text())

		articles = append(articles, &NewsArticle{
			Title:       title,
			Summary:     summary,
			URL:         link,
			Source:      source,
			PublishedAt: published,
		})
		return true
	})
	return articles, nil
}
