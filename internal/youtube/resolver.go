package youtube

import (
	"context"
	"fmt"

	"prayer_bot/internal/fetcher"
	"prayer_bot/internal/model"
)

// feedVideoLimit bounds how many recent uploads are checked for a live chat.
const feedVideoLimit = 15

// ChatLookup finds the active live chat among a set of videos.
type ChatLookup interface {
	ActiveChatID(ctx context.Context, ids []string) (string, error)
}

// FeedResolver finds the live chat of any channel from its public video
// feed, without needing broadcast owner credentials.
type FeedResolver struct {
	fetcher   *fetcher.Fetcher
	lookup    ChatLookup
	channelID string
}

// NewFeedResolver creates a FeedResolver for channelID.
func NewFeedResolver(f *fetcher.Fetcher, lookup ChatLookup, channelID string) *FeedResolver {
	return &FeedResolver{fetcher: f, lookup: lookup, channelID: channelID}
}

// FindActiveSession returns the live chat id of the channel's current stream.
func (r *FeedResolver) FindActiveSession(ctx context.Context) (string, error) {
	feed, err := r.fetcher.Fetch(ctx, r.channelID)
	if err != nil {
		return "", fmt.Errorf("fetch channel feed: %w", err)
	}
	ids := fetcher.VideoIDs(feed, feedVideoLimit)
	chatID, err := r.lookup.ActiveChatID(ctx, ids)
	if err != nil {
		return "", err
	}
	if chatID == "" {
		return "", model.ErrNoActiveSession
	}
	return chatID, nil
}
