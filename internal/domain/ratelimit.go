package domain

import (
	"math"
	"time"
)

const dayLayout = "2006-01-02"

type RateLimitReason string

const (
	RateReasonNone        RateLimitReason = ""
	RateReasonCooldown    RateLimitReason = "cooldown"
	RateReasonDailyCapped RateLimitReason = "daily_cap_exceeded"
)

type RatePolicy struct {
	Cooldown   time.Duration
	DailyLimit int
	// Location defines calendar-day boundaries for the daily cap. nil means UTC.
	Location *time.Location
}

// DayBucket returns the calendar day containing t.
func (p RatePolicy) DayBucket(t time.Time) string {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// RatePairState is the persisted counter for one ordered (sender, recipient) pair.
type RatePairState struct {
	SenderID    int64
	RecipientID int64
	LastSentAt  time.Time
	Day         string
	DayCount    int
}

type RateDecision struct {
	Accepted   bool
	Reason     RateLimitReason
	RetryAfter int
}

func Accepted() RateDecision { return RateDecision{Accepted: true} }

// FirstContact is the state recorded for a pair that has never exchanged a message.
func FirstContact(sender, recipient int64, now time.Time, p RatePolicy) RatePairState {
	return RatePairState{
		SenderID:    sender,
		RecipientID: recipient,
		LastSentAt:  now,
		Day:         p.DayBucket(now),
		DayCount:    1,
	}
}

// Consume applies one send attempt to an existing state. The returned state must only be
// persisted when the decision is accepted; rejections leave the stored state untouched.
func (s RatePairState) Consume(now time.Time, p RatePolicy) (RatePairState, RateDecision) {
	elapsed := now.Sub(s.LastSentAt)
	if elapsed < p.Cooldown {
		remaining := int(math.Ceil((p.Cooldown - elapsed).Seconds()))
		if remaining < 1 {
			remaining = 1
		}
		return s, RateDecision{Reason: RateReasonCooldown, RetryAfter: remaining}
	}

	today := p.DayBucket(now)
	count := s.DayCount
	if s.Day != today {
		count = 0
	}

	if count+1 > p.DailyLimit {
		return s, RateDecision{Reason: RateReasonDailyCapped}
	}

	next := s
	next.LastSentAt = now
	next.Day = today
	next.DayCount = count + 1
	return next, Accepted()
}
