// Package fetcher downloads and parses a YouTube channel's public video feed.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedBaseURL is the public Atom feed endpoint of YouTube channels.
const FeedBaseURL = "https://www.youtube.com/feeds/videos.xml"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses channel feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	baseURL string
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
		baseURL: FeedBaseURL,
	}
}

// SetBaseURL overrides the feed endpoint.
func (f *Fetcher) SetBaseURL(u string) {
	f.baseURL = u
}

// ChannelFeedURL returns the feed URL of a channel.
func (f *Fetcher) ChannelFeedURL(channelID string) string {
	return f.baseURL + "?channel_id=" + url.QueryEscape(channelID)
}

// Fetch downloads and parses the feed of the given channel.
func (f *Fetcher) Fetch(ctx context.Context, channelID string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ChannelFeedURL(channelID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "PrayerRequestBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// VideoIDs returns up to limit video ids in feed order (newest first).
// Items without an id are skipped.
func VideoIDs(feed *gofeed.Feed, limit int) []string {
	if feed == nil {
		return nil
	}
	var ids []string
	for _, item := range feed.Items {
		if limit > 0 && len(ids) >= limit {
			break
		}
		if id := videoID(item); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func videoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if v := yt["videoId"]; len(v) > 0 && v[0].Value != "" {
			return v[0].Value
		}
	}
	if id, ok := strings.CutPrefix(item.GUID, "yt:video:"); ok {
		return id
	}
	return ""
}
