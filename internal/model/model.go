// Package model defines the domain types used across the application.
package model

import (
	"errors"
	"time"
)

// Sentinel errors shared by the chat channel, the log sinks and the listener.
var (
	// ErrNoActiveSession means no live chat is currently running.
	ErrNoActiveSession = errors.New("no active live chat session")
	// ErrChatClosed means the live chat ended, was disabled or no longer exists.
	ErrChatClosed = errors.New("live chat closed")
	// ErrUnauthorized means the channel rejected the bot's credentials.
	ErrUnauthorized = errors.New("chat channel rejected credentials")
	// ErrPartitionNotFound means a row was appended to a partition that does not exist.
	ErrPartitionNotFound = errors.New("log partition not found")
)

// RowTimeLayout is the timestamp format of the first column of a log row.
const RowTimeLayout = "2006-01-02 15:04:05"

// ChatEvent is a single event read from the live chat.
// ID is stable across redelivery and is the deduplication key.
type ChatEvent struct {
	ID              string
	AuthorName      string
	AuthorChannelID string
	Text            string
	// HasText is false for events without a text payload (stickers, membership events).
	HasText     bool
	PublishedAt time.Time
}

// Page is one response of the chat channel's paginated event stream.
type Page struct {
	Events []ChatEvent
	// NextCursor is empty when the channel reports no cursor.
	NextCursor string
	// PollInterval is the server-suggested wait before the next fetch.
	PollInterval time.Duration
}

// PrayerRequest is a request accepted from the chat and appended to the log.
type PrayerRequest struct {
	SubmittedAt time.Time
	Name        string
	Text        string
}

// Row returns the three log columns: capture time, name, request text.
func (r PrayerRequest) Row() []string {
	return []string{r.SubmittedAt.Format(RowTimeLayout), r.Name, r.Text}
}
