package domain

import anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"

type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeAccessDenied
	OutcomeInvalidLink
	OutcomeSelfLink
	OutcomeRecipientAnonDisabled
	OutcomeSenderBlocked
	OutcomeNotDelivered
	OutcomeNothingPending
	OutcomeRateLimited
	OutcomeLinkRejected
	OutcomeDelivered
	OutcomeAwaitingMessage
	OutcomeHome
	OutcomeThreadNotFound
	OutcomeForbidden
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccessDenied:
		return "access_denied"
	case OutcomeInvalidLink:
		return "invalid_link"
	case OutcomeSelfLink:
		return "self_link"
	case OutcomeRecipientAnonDisabled:
		return "recipient_anon_disabled"
	case OutcomeSenderBlocked:
		return "sender_blocked"
	case OutcomeNotDelivered:
		return "not_delivered"
	case OutcomeNothingPending:
		return "nothing_pending"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeLinkRejected:
		return "link_rejected"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeAwaitingMessage:
		return "awaiting_message"
	case OutcomeHome:
		return "home"
	case OutcomeThreadNotFound:
		return "thread_not_found"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Outcome is the decision returned to the transport. Only the fields relevant to Kind are set.
type Outcome struct {
	Kind OutcomeKind

	// Delivered
	ThreadID    int64
	RecipientID int64
	SenderID    int64
	Content     anonbot.Content

	// RateLimited
	Reason     RateLimitReason
	RetryAfter int

	// Home, SelfLink
	Settings *Settings
}

func Reject(kind OutcomeKind) Outcome {
	return Outcome{Kind: kind}
}

func RateLimited(d RateDecision) Outcome {
	return Outcome{Kind: OutcomeRateLimited, Reason: d.Reason, RetryAfter: d.RetryAfter}
}

func Delivered(threadID, recipientID, senderID int64, content anonbot.Content) Outcome {
	return Outcome{
		Kind:        OutcomeDelivered,
		ThreadID:    threadID,
		RecipientID: recipientID,
		SenderID:    senderID,
		Content:     content,
	}
}

func (o Outcome) IsDelivered() bool { return o.Kind == OutcomeDelivered }
