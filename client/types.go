package client

import (
	"fmt"
	"time"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
)

// Outcome mirrors the relay decision returned by the pipeline endpoints.
type Outcome struct {
	Outcome     string                   `json:"outcome"`
	ThreadID    int64                    `json:"threadId,omitempty"`
	RecipientID int64                    `json:"recipientId,omitempty"`
	SenderID    int64                    `json:"senderId,omitempty"`
	Reason      string                   `json:"reason,omitempty"`
	RetryAfter  int                      `json:"retryAfter,omitempty"`
	Code        string                   `json:"code,omitempty"`
	Link        string                   `json:"link,omitempty"`
	Settings    *Settings                `json:"settings,omitempty"`
	Content     *anonbot.ContentEnvelope `json:"content,omitempty"`
}

func (o Outcome) Delivered() bool { return o.Outcome == "delivered" }

type Settings struct {
	Code        string `json:"code"`
	AnonEnabled bool   `json:"anonEnabled"`
	BlockLinks  bool   `json:"blockLinks"`
	Link        string `json:"link,omitempty"`
}

type Thread struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipientId"`
	SenderID    int64      `json:"senderId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type Report struct {
	ThreadID    int64 `json:"threadId"`
	ReporterID  int64 `json:"reporterId"`
	RecipientID int64 `json:"recipientId"`
	SenderID    int64 `json:"senderId"`
	AdminID     int64 `json:"adminId"`
}

type Stats struct {
	Identities int64 `json:"identities"`
	Threads    int64 `json:"threads"`
	Bans       int64 `json:"bans"`
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.StatusCode, e.Message)
}
