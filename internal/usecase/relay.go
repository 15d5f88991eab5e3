package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/policy"
)

var ErrContentRequired = errors.New("content is required")

// Stores bundles the persistence backends of the relay.
type Stores struct {
	Identities IdentityRepository
	Blocks     BlockRepository
	Bans       BanRepository
	Threads    ThreadRepository
	Rates      RateLimitRepository
	Pending    PendingRepository
}

type RelayOption func(*RelayUsecase)

// WithClock replaces the wall clock used for rate limiting and timestamps.
func WithClock(now func() time.Time) RelayOption {
	return func(r *RelayUsecase) {
		r.now = now
		r.identity.now = now
	}
}

// WithEvents publishes delivered and reported events. Publish failures are logged and ignored.
func WithEvents(p EventPublisher) RelayOption {
	return func(r *RelayUsecase) { r.events = p }
}

func WithObserver(o OutcomeObserver) RelayOption {
	return func(r *RelayUsecase) { r.observer = o }
}

func WithContentPolicy(p ContentPolicy) RelayOption {
	return func(r *RelayUsecase) { r.content = p }
}

type RelayUsecase struct {
	identity *IdentityUsecase
	blocks   BlockRepository
	bans     BanRepository
	threads  ThreadRepository
	rates    RateLimitRepository
	pending  PendingRepository
	content  ContentPolicy
	events   EventPublisher
	observer OutcomeObserver
	config   domain.Config
	now      func() time.Time
}

func NewRelayUsecase(config domain.Config, stores Stores, opts ...RelayOption) *RelayUsecase {
	r := &RelayUsecase{
		identity: NewIdentityUsecase(stores.Identities, config),
		blocks:   stores.Blocks,
		bans:     stores.Bans,
		threads:  stores.Threads,
		rates:    stores.Rates,
		pending:  stores.Pending,
		content:  policy.NewLinkPolicy(config.LinkMarkers),
		config:   config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Identity exposes the identity usecase sharing this relay's stores and clock.
func (r *RelayUsecase) Identity() *IdentityUsecase {
	return r.identity
}

// Start handles an entry with an optional deep-link argument.
func (r *RelayUsecase) Start(ctx context.Context, senderID int64, argument string) (outcome domain.Outcome, err error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Start")
	defer span.End()
	defer r.observe("start", &outcome, &err)

	banned, err := r.bans.IsBanned(ctx, senderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if banned {
		return domain.Reject(domain.OutcomeAccessDenied), nil
	}

	identity, err := r.identity.Ensure(ctx, senderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}

	if code, ok := anonbot.ParseStartArgument(argument); ok {
		return r.initiate(ctx, senderID, code)
	}

	settings := identity.Settings()
	return domain.Outcome{Kind: domain.OutcomeHome, Settings: &settings}, nil
}

// Initiate resolves an inbox code and, when allowed, records the pending intent.
func (r *RelayUsecase) Initiate(ctx context.Context, senderID int64, code string) (outcome domain.Outcome, err error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Initiate")
	defer span.End()
	defer r.observe("initiate", &outcome, &err)

	banned, err := r.bans.IsBanned(ctx, senderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if banned {
		return domain.Reject(domain.OutcomeAccessDenied), nil
	}

	return r.initiate(ctx, senderID, code)
}

func (r *RelayUsecase) initiate(ctx context.Context, senderID int64, code string) (domain.Outcome, error) {
	recipientID, err := r.identity.ResolveByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Reject(domain.OutcomeInvalidLink), nil
	}
	if err != nil {
		return domain.Outcome{}, err
	}

	if recipientID == senderID {
		settings, err := r.identity.Settings(ctx, senderID)
		if err != nil {
			return domain.Outcome{}, err
		}
		return domain.Outcome{Kind: domain.OutcomeSelfLink, Settings: &settings}, nil
	}

	recipient, err := r.identity.Settings(ctx, recipientID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !recipient.AnonEnabled {
		return domain.Reject(domain.OutcomeRecipientAnonDisabled), nil
	}

	blocked, err := r.blocks.IsBlocked(ctx, recipientID, senderID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if blocked {
		return domain.Reject(domain.OutcomeSenderBlocked), nil
	}

	if err := r.pending.Set(ctx, senderID, recipientID, r.now()); err != nil {
		return domain.Outcome{}, err
	}

	return domain.Outcome{Kind: domain.OutcomeAwaitingMessage, RecipientID: recipientID}, nil
}

// Deliver routes content to the sender's pending target after every gate passes.
func (r *RelayUsecase) Deliver(ctx context.Context, senderID int64, content anonbot.Content) (outcome domain.Outcome, err error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Deliver")
	defer span.End()
	defer r.observe("deliver", &outcome, &err)

	if content == nil {
		return domain.Outcome{}, ErrContentRequired
	}

	targetID, ok, err := r.pending.Get(ctx, senderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if !ok {
		return domain.Reject(domain.OutcomeNothingPending), nil
	}
	span.SetAttributes(attribute.Int64("recipient", targetID))

	banned, err := r.bans.IsBanned(ctx, senderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if banned {
		return domain.Reject(domain.OutcomeAccessDenied), nil
	}

	recipientBanned, err := r.bans.IsBanned(ctx, targetID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	blocked := false
	if !recipientBanned {
		blocked, err = r.blocks.IsBlocked(ctx, targetID, senderID)
		if err != nil {
			span.RecordError(err)
			return domain.Outcome{}, err
		}
	}
	if recipientBanned || blocked {
		if err := r.pending.Clear(ctx, senderID); err != nil {
			span.RecordError(err)
			return domain.Outcome{}, err
		}
		return domain.Reject(domain.OutcomeNotDelivered), nil
	}

	recipient, err := r.identity.Settings(ctx, targetID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if !recipient.AnonEnabled {
		if err := r.pending.Clear(ctx, senderID); err != nil {
			span.RecordError(err)
			return domain.Outcome{}, err
		}
		return domain.Reject(domain.OutcomeRecipientAnonDisabled), nil
	}

	now := r.now()
	decision, err := r.rates.CheckAndConsume(ctx, senderID, targetID, r.config.RatePolicy(), now)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if !decision.Accepted {
		return domain.RateLimited(decision), nil
	}

	verdict := r.content.Evaluate(policy.Subject{Content: content, BlockLinks: recipient.BlockLinks})
	if !verdict.Allowed {
		slog.DebugContext(
			ctx, "content rejected",
			slog.String("rule", verdict.Rule),
			slog.Int64("sender", senderID),
			slog.String("module", "relay"),
		)
		return domain.Reject(domain.OutcomeLinkRejected), nil
	}

	thread, err := r.threads.ThreadFor(ctx, targetID, senderID, now)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}

	if err := r.pending.Clear(ctx, senderID); err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}

	event := anonbot.NewEvent(anonbot.EventDelivered, thread.ID, targetID, senderID, now)
	envelope := anonbot.Envelope(content)
	event.Content = &envelope
	r.publish(ctx, event)

	slog.InfoContext(
		ctx, "message delivered",
		slog.Int64("thread", thread.ID),
		slog.String("kind", string(content.Kind())),
		slog.String("module", "relay"),
	)

	return domain.Delivered(thread.ID, targetID, senderID, content), nil
}

// Reply points the recipient of a thread back at its original sender.
func (r *RelayUsecase) Reply(ctx context.Context, identityID, threadID int64) (outcome domain.Outcome, err error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Reply")
	defer span.End()
	defer r.observe("reply", &outcome, &err)

	thread, err := r.threads.Get(ctx, threadID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Reject(domain.OutcomeThreadNotFound), nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if thread.RecipientID != identityID {
		return domain.Reject(domain.OutcomeForbidden), nil
	}

	banned, err := r.bans.IsBanned(ctx, thread.SenderID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if banned {
		return domain.Reject(domain.OutcomeNotDelivered), nil
	}
	blocked, err := r.blocks.IsBlocked(ctx, thread.SenderID, thread.RecipientID)
	if err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}
	if blocked {
		return domain.Reject(domain.OutcomeNotDelivered), nil
	}

	if err := r.pending.Set(ctx, thread.RecipientID, thread.SenderID, r.now()); err != nil {
		span.RecordError(err)
		return domain.Outcome{}, err
	}

	return domain.Outcome{
		Kind:        domain.OutcomeAwaitingMessage,
		ThreadID:    thread.ID,
		RecipientID: thread.SenderID,
	}, nil
}

// BlockSender stops senderID from reaching recipientID. Repeated calls are no-ops.
func (r *RelayUsecase) BlockSender(ctx context.Context, recipientID, senderID int64) error {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.BlockSender")
	defer span.End()

	if err := r.blocks.Block(ctx, recipientID, senderID, r.now()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// ReportThread authorizes a report by the thread's recipient.
func (r *RelayUsecase) ReportThread(ctx context.Context, reporterID, threadID int64) (domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.ReportThread")
	defer span.End()

	thread, err := r.threads.Get(ctx, threadID)
	if err != nil {
		span.RecordError(err)
		return domain.Report{}, err
	}
	if thread.RecipientID != reporterID {
		return domain.Report{}, domain.ErrForbidden
	}

	report := domain.Report{
		ThreadID:    thread.ID,
		ReporterID:  reporterID,
		RecipientID: thread.RecipientID,
		SenderID:    thread.SenderID,
		AdminID:     r.config.AdminID,
	}

	if report.AdminID != 0 {
		event := anonbot.NewEvent(anonbot.EventReported, thread.ID, thread.RecipientID, thread.SenderID, r.now())
		event.AdminID = report.AdminID
		r.publish(ctx, event)
	}

	return report, nil
}

// OpenThread returns a thread owned by identityID.
func (r *RelayUsecase) OpenThread(ctx context.Context, identityID, threadID int64) (domain.Thread, error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.OpenThread")
	defer span.End()

	thread, err := r.threads.Get(ctx, threadID)
	if err != nil {
		span.RecordError(err)
		return domain.Thread{}, err
	}
	if thread.RecipientID != identityID {
		return domain.Thread{}, domain.ErrForbidden
	}
	return thread, nil
}

// Inbox lists the most recently active threads where identityID is the recipient.
func (r *RelayUsecase) Inbox(ctx context.Context, identityID int64) ([]domain.Thread, error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Inbox")
	defer span.End()

	banned, err := r.bans.IsBanned(ctx, identityID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if banned {
		return nil, domain.ErrAccessDenied
	}

	threads, err := r.threads.Recent(ctx, identityID, r.config.InboxLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return threads, nil
}

func (r *RelayUsecase) Ban(ctx context.Context, actorID, targetID int64) error {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Ban")
	defer span.End()

	if !r.config.IsAdmin(actorID) {
		return domain.ErrForbidden
	}
	if err := r.bans.Ban(ctx, targetID, r.now()); err != nil {
		span.RecordError(err)
		return err
	}
	slog.InfoContext(ctx, "identity banned", slog.Int64("target", targetID), slog.String("module", "relay"))
	return nil
}

func (r *RelayUsecase) Unban(ctx context.Context, actorID, targetID int64) error {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Unban")
	defer span.End()

	if !r.config.IsAdmin(actorID) {
		return domain.ErrForbidden
	}
	if err := r.bans.Unban(ctx, targetID); err != nil {
		span.RecordError(err)
		return err
	}
	slog.InfoContext(ctx, "identity unbanned", slog.Int64("target", targetID), slog.String("module", "relay"))
	return nil
}

func (r *RelayUsecase) Stats(ctx context.Context, actorID int64) (domain.Stats, error) {
	ctx, span := tracer.Start(ctx, "Relay.Usecase.Stats")
	defer span.End()

	if !r.config.IsAdmin(actorID) {
		return domain.Stats{}, domain.ErrForbidden
	}

	var stats domain.Stats
	var err error
	if stats.Identities, err = r.identity.Count(ctx); err != nil {
		span.RecordError(err)
		return domain.Stats{}, err
	}
	if stats.Threads, err = r.threads.Count(ctx); err != nil {
		span.RecordError(err)
		return domain.Stats{}, err
	}
	if stats.Bans, err = r.bans.Count(ctx); err != nil {
		span.RecordError(err)
		return domain.Stats{}, err
	}
	return stats, nil
}

func (r *RelayUsecase) publish(ctx context.Context, event anonbot.Event) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "failed to publish event",
			slog.String("error", err.Error()),
			slog.String("type", string(event.Type)),
			slog.String("module", "relay"),
		)
	}
}

func (r *RelayUsecase) observe(operation string, outcome *domain.Outcome, err *error) {
	if r.observer == nil || *err != nil {
		return
	}
	r.observer.Observe(operation, *outcome)
}
