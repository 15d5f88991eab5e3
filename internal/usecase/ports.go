package usecase

import (
	"context"
	"time"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/policy"
)

// IdentityRepository owns identities, their codes and settings.
type IdentityRepository interface {
	Get(ctx context.Context, id int64) (domain.Identity, error)
	// Create stores identity unless one with the same id exists, and returns the stored row.
	// A code collision yields domain.ErrCodeTaken.
	Create(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	ResolveByCode(ctx context.Context, code string) (int64, error)
	SetAnonEnabled(ctx context.Context, id int64, enabled bool) error
	SetBlockLinks(ctx context.Context, id int64, enabled bool) error
	Count(ctx context.Context) (int64, error)
}

// BlockRepository holds the directional recipient -> sender block relation.
type BlockRepository interface {
	IsBlocked(ctx context.Context, recipientID, senderID int64) (bool, error)
	Block(ctx context.Context, recipientID, senderID int64, at time.Time) error
}

// BanRepository is the process-wide deny list.
type BanRepository interface {
	IsBanned(ctx context.Context, id int64) (bool, error)
	Ban(ctx context.Context, id int64, at time.Time) error
	Unban(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ThreadRepository maps ordered (recipient, sender) pairs to stable thread ids.
type ThreadRepository interface {
	// ThreadFor gets or creates the thread atomically and marks it active at now.
	ThreadFor(ctx context.Context, recipientID, senderID int64, now time.Time) (domain.Thread, error)
	Get(ctx context.Context, threadID int64) (domain.Thread, error)
	Recent(ctx context.Context, recipientID int64, limit int) ([]domain.Thread, error)
	Count(ctx context.Context) (int64, error)
}

// RateLimitRepository runs the per-pair rate state machine as one atomic unit.
type RateLimitRepository interface {
	CheckAndConsume(ctx context.Context, senderID, recipientID int64, p domain.RatePolicy, now time.Time) (domain.RateDecision, error)
}

// PendingRepository records the single recipient each sender is composing to.
type PendingRepository interface {
	Set(ctx context.Context, senderID, targetID int64, at time.Time) error
	Get(ctx context.Context, senderID int64) (int64, bool, error)
	Clear(ctx context.Context, senderID int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event anonbot.Event) error
}

type OutcomeObserver interface {
	Observe(operation string, outcome domain.Outcome)
}

type ContentPolicy interface {
	Evaluate(s policy.Subject) policy.Verdict
}
