package anonbot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
	KindDocument  ContentKind = "document"
)

// Content is one forwardable inbound item. The set of implementations is closed.
type Content interface {
	Kind() ContentKind
	// Body returns the text or caption scanned by the content policy.
	Body() string
	isContent()
}

type Text struct {
	Value string
}

type Photo struct {
	FileID  string
	Caption string
}

type Video struct {
	FileID  string
	Caption string
}

type Voice struct {
	FileID  string
	Caption string
}

// VideoNote carries no caption on any platform we relay for.
type VideoNote struct {
	FileID string
}

type Document struct {
	FileID  string
	Caption string
}

func (Text) Kind() ContentKind      { return KindText }
func (Photo) Kind() ContentKind     { return KindPhoto }
func (Video) Kind() ContentKind     { return KindVideo }
func (Voice) Kind() ContentKind     { return KindVoice }
func (VideoNote) Kind() ContentKind { return KindVideoNote }
func (Document) Kind() ContentKind  { return KindDocument }

func (c Text) Body() string     { return c.Value }
func (c Photo) Body() string    { return c.Caption }
func (c Video) Body() string    { return c.Caption }
func (c Voice) Body() string    { return c.Caption }
func (VideoNote) Body() string  { return "" }
func (c Document) Body() string { return c.Caption }

func (Text) isContent()      {}
func (Photo) isContent()     {}
func (Video) isContent()     {}
func (Voice) isContent()     {}
func (VideoNote) isContent() {}
func (Document) isContent()  {}

// ContentEnvelope is the wire form of Content.
type ContentEnvelope struct {
	Kind   ContentKind `json:"kind"`
	FileID string      `json:"fileId,omitempty"`
	Text   string      `json:"text,omitempty"`
}

func (e ContentEnvelope) Decode() (Content, error) {
	if e.Kind != KindText && e.FileID == "" {
		return nil, fmt.Errorf("content of kind %q requires a file id", e.Kind)
	}
	switch e.Kind {
	case KindText:
		if e.Text == "" {
			return nil, fmt.Errorf("text content is empty")
		}
		return Text{Value: e.Text}, nil
	case KindPhoto:
		return Photo{FileID: e.FileID, Caption: e.Text}, nil
	case KindVideo:
		return Video{FileID: e.FileID, Caption: e.Text}, nil
	case KindVoice:
		return Voice{FileID: e.FileID, Caption: e.Text}, nil
	case KindVideoNote:
		return VideoNote{FileID: e.FileID}, nil
	case KindDocument:
		return Document{FileID: e.FileID, Caption: e.Text}, nil
	default:
		return nil, fmt.Errorf("unsupported content kind %q", e.Kind)
	}
}

func Envelope(c Content) ContentEnvelope {
	switch v := c.(type) {
	case Text:
		return ContentEnvelope{Kind: KindText, Text: v.Value}
	case Photo:
		return ContentEnvelope{Kind: KindPhoto, FileID: v.FileID, Text: v.Caption}
	case Video:
		return ContentEnvelope{Kind: KindVideo, FileID: v.FileID, Text: v.Caption}
	case Voice:
		return ContentEnvelope{Kind: KindVoice, FileID: v.FileID, Text: v.Caption}
	case VideoNote:
		return ContentEnvelope{Kind: KindVideoNote, FileID: v.FileID}
	case Document:
		return ContentEnvelope{Kind: KindDocument, FileID: v.FileID, Text: v.Caption}
	}
	return ContentEnvelope{}
}

type EventType string

const (
	EventDelivered EventType = "delivered"
	EventReported  EventType = "reported"
)

// Event is published on the signal channel after the relay commits a decision.
type Event struct {
	ID          string           `json:"id"`
	Type        EventType        `json:"type"`
	ThreadID    int64            `json:"threadId"`
	RecipientID int64            `json:"recipientId"`
	SenderID    int64            `json:"senderId"`
	AdminID     int64            `json:"adminId,omitempty"`
	Content     *ContentEnvelope `json:"content,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func NewEvent(typ EventType, threadID, recipientID, senderID int64, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        typ,
		ThreadID:    threadID,
		RecipientID: recipientID,
		SenderID:    senderID,
		CreatedAt:   at,
	}
}
