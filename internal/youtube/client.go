// Package youtube adapts the YouTube Data API live chat endpoints to the
// listener's channel and session resolver contracts.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/auth"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"prayer_bot/internal/model"
)

// Error reasons that mean the live chat is gone for good.
var closedReasons = map[string]bool{
	"liveChatEnded":    true,
	"liveChatNotFound": true,
	"liveChatDisabled": true,
}

// Client reads and writes the live chat of the authenticated channel.
type Client struct {
	svc *yt.Service
}

// New creates a Client. Callers pass option.WithTokenSource in production.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// FindActiveSession returns the live chat id of the channel's active broadcast.
func (c *Client) FindActiveSession(ctx context.Context) (string, error) {
	resp, err := c.svc.LiveBroadcasts.List([]string{"snippet"}).
		BroadcastStatus("active").
		BroadcastType("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list live broadcasts: %w", mapError(err))
	}
	for _, b := range resp.Items {
		if b.Snippet != nil && b.Snippet.LiveChatId != "" {
			return b.Snippet.LiveChatId, nil
		}
	}
	return "", model.ErrNoActiveSession
}

// ActiveChatID returns the live chat id of the first video among ids that
// is currently streaming, or "" when none is.
func (c *Client) ActiveChatID(ctx context.Context, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	resp, err := c.svc.Videos.List([]string{"liveStreamingDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list videos: %w", mapError(err))
	}
	for _, v := range resp.Items {
		d := v.LiveStreamingDetails
		if d != nil && d.ActiveLiveChatId != "" && d.ActualEndTime == "" {
			return d.ActiveLiveChatId, nil
		}
	}
	return "", nil
}

// ListEvents fetches the chat page following cursor. An empty cursor starts
// at the live edge.
func (c *Client) ListEvents(ctx context.Context, chatID, cursor string) (model.Page, error) {
	call := c.svc.LiveChatMessages.List(chatID, []string{"snippet", "authorDetails"})
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return model.Page{}, fmt.Errorf("list live chat messages: %w", mapError(err))
	}

	page := model.Page{
		Events:       make([]model.ChatEvent, 0, len(resp.Items)),
		NextCursor:   resp.NextPageToken,
		PollInterval: time.Duration(resp.PollingIntervalMillis) * time.Millisecond,
	}
	for _, m := range resp.Items {
		page.Events = append(page.Events, toEvent(m))
	}
	return page, nil
}

// PostMessage posts a text message into the live chat.
func (c *Client) PostMessage(ctx context.Context, chatID, text string) error {
	msg := &yt.LiveChatMessage{
		Snippet: &yt.LiveChatMessageSnippet{
			LiveChatId: chatID,
			Type:       "textMessageEvent",
			TextMessageDetails: &yt.LiveChatTextMessageDetails{
				MessageText: text,
			},
		},
	}
	if _, err := c.svc.LiveChatMessages.Insert([]string{"snippet"}, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert live chat message: %w", mapError(err))
	}
	return nil
}

func toEvent(m *yt.LiveChatMessage) model.ChatEvent {
	ev := model.ChatEvent{ID: m.Id}
	if a := m.AuthorDetails; a != nil {
		ev.AuthorName = a.DisplayName
		ev.AuthorChannelID = a.ChannelId
	}
	if s := m.Snippet; s != nil {
		ev.Text = s.DisplayMessage
		ev.HasText = s.DisplayMessage != ""
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			ev.PublishedAt = t
		}
		if ev.AuthorChannelID == "" {
			ev.AuthorChannelID = s.AuthorChannelId
		}
	}
	return ev
}

// mapError tags errors that end the session with the model sentinels.
// A rejected token refresh is unauthorized. Everything else, quota errors
// included, is left as is and retried.
func mapError(err error) error {
	var (
		rerr *oauth2.RetrieveError
		aerr *auth.Error
	)
	if errors.As(err, &rerr) || errors.As(err, &aerr) {
		return fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	if gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}
	for _, item := range gerr.Errors {
		if closedReasons[item.Reason] {
			return fmt.Errorf("%w: %w", model.ErrChatClosed, err)
		}
	}
	return err
}
