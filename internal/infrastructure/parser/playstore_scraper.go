package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewLens/internal/domain"
	"ReviewLens/internal/provider"
)

const (
	playBaseURL       = "https://play.google.com/store/apps/details"
	playSourceName    = "Google Play"
	defaultFetchDelay = time.Second
)

var ratingExpr = regexp.MustCompile(`Rated (\d) star`)

// PlayStoreScraper crawls app review pages and extracts raw reviews
// per tracked bank. Rate limiting is a fixed delay between app fetches.
type PlayStoreScraper struct {
	client *http.Client
}

var _ provider.Scraper = (*PlayStoreScraper)(nil)

// NewPlayStoreScraper wires an HTTP client.
func NewPlayStoreScraper(client *http.Client) *PlayStoreScraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PlayStoreScraper{client: client}
}

// Name identifies the strategy inside the registry.
func (p *PlayStoreScraper) Name() string {
	return "playstore"
}

// Scrape walks through each configured app and collects its reviews.
func (p *PlayStoreScraper) Scrape(ctx context.Context, req provider.Request) ([]domain.RawReview, error) {
	if len(req.Apps) == 0 {
		return nil, fmt.Errorf("no apps configured")
	}

	delay := req.FetchDelay
	if delay <= 0 {
		delay = defaultFetchDelay
	}

	results := make([]domain.RawReview, 0)
	for i, app := range req.Apps {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		pageURL, err := buildReviewsURL(app)
		if err != nil {
			return nil, fmt.Errorf("app %s: %w", app.Bank, err)
		}

		doc, err := p.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("app %s: %w", app.Bank, err)
		}

		results = append(results, extractReviews(doc, app.Bank)...)
	}

	return results, nil
}

func (p *PlayStoreScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ReviewLens/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractReviews(doc *goquery.Document, bank string) []domain.RawReview {
	var reviews []domain.RawReview

	doc.Find("div[data-review-id]").Each(func(_ int, sel *goquery.Selection) {
		reviews = append(reviews, domain.RawReview{
			Bank:    bank,
			Content: strings.TrimSpace(sel.Find(".review-text").First().Text()),
			Rating:  parseRating(sel),
			Date:    strings.TrimSpace(sel.Find(".review-date").First().Text()),
			Source:  playSourceName,
		})
	})

	return reviews
}

func parseRating(sel *goquery.Selection) int {
	label, _ := sel.Find("[aria-label*=\"star\"]").First().Attr("aria-label")
	match := ratingExpr.FindStringSubmatch(label)
	if len(match) != 2 {
		return 0
	}
	rating, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return rating
}

// buildReviewsURL prefers an explicit per-app URL from config and
// otherwise derives the store details page from the app ID.
func buildReviewsURL(app provider.App) (string, error) {
	if app.URL != "" {
		if _, err := url.Parse(app.URL); err != nil {
			return "", fmt.Errorf("invalid app url %s: %w", app.URL, err)
		}
		return app.URL, nil
	}
	if app.AppID == "" {
		return "", fmt.Errorf("app has neither url nor id")
	}

	parsed, err := url.Parse(playBaseURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("id", app.AppID)
	query.Set("showAllReviews", "true")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
