package presenter

import (
	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

// OutcomeView is the wire form of a relay decision.
type OutcomeView struct {
	Outcome     string                   `json:"outcome"`
	ThreadID    int64                    `json:"threadId,omitempty"`
	RecipientID int64                    `json:"recipientId,omitempty"`
	SenderID    int64                    `json:"senderId,omitempty"`
	Reason      string                   `json:"reason,omitempty"`
	RetryAfter  int                      `json:"retryAfter,omitempty"`
	Code        string                   `json:"code,omitempty"`
	Settings    *domain.Settings         `json:"settings,omitempty"`
	Link        string                   `json:"link,omitempty"`
	Content     *anonbot.ContentEnvelope `json:"content,omitempty"`
}

// SettingsView is the wire form of an identity's settings together with its inbox link.
type SettingsView struct {
	domain.Settings
	Link string `json:"link"`
}

func Outcome(o domain.Outcome, link func(domain.Settings) string) OutcomeView {
	view := OutcomeView{
		Outcome:     o.Kind.String(),
		ThreadID:    o.ThreadID,
		RecipientID: o.RecipientID,
		SenderID:    o.SenderID,
		Reason:      string(o.Reason),
		RetryAfter:  o.RetryAfter,
		Settings:    o.Settings,
	}
	if o.Settings != nil {
		view.Code = o.Settings.Code
		view.Link = link(*o.Settings)
	}
	if o.Content != nil {
		envelope := anonbot.Envelope(o.Content)
		view.Content = &envelope
	}
	return view
}
