// Package extract turns a URL into a readable article snapshot: main
// content isolated with readability, metadata filled from Open Graph
// tags, HTML sanitized for storage.
package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

const (
	fetchTimeout = 15 * time.Second
	userAgent    = "marginalia/1.0 (+https://github.com/nikbrunner/marginalia)"
	maxExcerpt   = 200
)

// Client fetches and extracts articles.
type Client struct {
	http *http.Client
	wpm  int
}

// NewClient creates an extraction client. wordsPerMinute drives the
// reading time estimate; zero or negative falls back to 238.
func NewClient(wordsPerMinute int) *Client {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 238
	}
	return &Client{
		http: &http.Client{Timeout: fetchTimeout},
		wpm:  wordsPerMinute,
	}
}

// Fetch downloads the page and extracts a ParsedArticle. The returned
// content is sanitized HTML; offsets computed against it stay valid
// because it is stored verbatim.
func (c *Client) Fetch(ctx context.Context, rawURL string) (model.ParsedArticle, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return model.ParsedArticle{}, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return model.ParsedArticle{}, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.ParsedArticle{}, &Error{Kind: classifyFetchError(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.ParsedArticle{}, &Error{Kind: KindFetchFailed, URL: rawURL, Status: resp.StatusCode}
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return model.ParsedArticle{}, &Error{Kind: KindFetchFailed, URL: rawURL, Err: err}
	}

	return c.parse(body, pageURL)
}

func (c *Client) parse(body []byte, pageURL *url.URL) (model.ParsedArticle, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return model.ParsedArticle{}, &Error{Kind: KindExtractionFailed, URL: pageURL.String(), Err: err}
	}

	meta := readMeta(body)

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = meta.title
	}
	if title == "" {
		title = pageURL.Host
	}

	sanitized := content.Sanitize(article.Content)
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return model.ParsedArticle{}, &Error{Kind: KindExtractionFailed, URL: pageURL.String()}
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = meta.description
	}
	if excerpt == "" {
		excerpt = text
	}
	excerpt = clip(excerpt, maxExcerpt)

	thumbnail := article.Image
	if thumbnail == "" {
		thumbnail = meta.image
	}
	thumbnail = absoluteURL(pageURL, thumbnail)

	siteName := strings.TrimSpace(article.SiteName)
	if siteName == "" {
		siteName = meta.siteName
	}
	if siteName == "" {
		siteName = pageURL.Host
	}

	return model.ParsedArticle{
		Title:       title,
		Content:     sanitized,
		Excerpt:     excerpt,
		Thumbnail:   thumbnail,
		SiteName:    siteName,
		ReadingTime: c.readingTime(text),
	}, nil
}

// readingTime estimates minutes to read, never below one.
func (c *Client) readingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := words / c.wpm
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

type pageMeta struct {
	title       string
	description string
	image       string
	siteName    string
}

// readMeta pulls Open Graph properties for the fields readability
// sometimes misses.
func readMeta(body []byte) pageMeta {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}
	}

	var meta pageMeta
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		if prop == "" {
			prop, _ = sel.Attr("name")
		}
		value := strings.TrimSpace(sel.AttrOr("content", ""))
		if value == "" {
			return
		}
		switch prop {
		case "og:title":
			meta.title = value
		case "og:description", "description":
			if meta.description == "" {
				meta.description = value
			}
		case "og:image":
			meta.image = value
		case "og:site_name":
			meta.siteName = value
		}
	})
	return meta
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func absoluteURL(base *url.URL, raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func classifyFetchError(err error) Kind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindFetchFailed
}
