package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

type mockIdentityRepo struct {
	mu   sync.Mutex
	rows map[int64]domain.Identity
	err  error
}

func newMockIdentityRepo() *mockIdentityRepo {
	return &mockIdentityRepo{rows: map[int64]domain.Identity{}}
}

func (m *mockIdentityRepo) Get(ctx context.Context, id int64) (domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	row, ok := m.rows[id]
	if !ok {
		return domain.Identity{}, domain.NotFoundError{Resource: "identity"}
	}
	return row, nil
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Identity{}, m.err
	}
	if row, ok := m.rows[identity.ID]; ok {
		return row, nil
	}
	for _, row := range m.rows {
		if row.Code == identity.Code {
			return domain.Identity{}, domain.ErrCodeTaken
		}
	}
	m.rows[identity.ID] = identity
	return identity, nil
}

func (m *mockIdentityRepo) ResolveByCode(ctx context.Context, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Code == code {
			return row.ID, nil
		}
	}
	return 0, domain.NotFoundError{Resource: "identity"}
}

func (m *mockIdentityRepo) SetAnonEnabled(ctx context.Context, id int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "identity"}
	}
	row.AnonEnabled = enabled
	m.rows[id] = row
	return nil
}

func (m *mockIdentityRepo) SetBlockLinks(ctx context.Context, id int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "identity"}
	}
	row.BlockLinks = enabled
	m.rows[id] = row
	return nil
}

func (m *mockIdentityRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type pair struct{ a, b int64 }

type mockBlockRepo struct {
	mu   sync.Mutex
	rows map[pair]bool
}

func (m *mockBlockRepo) IsBlocked(ctx context.Context, recipientID, senderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[pair{recipientID, senderID}], nil
}

func (m *mockBlockRepo) Block(ctx context.Context, recipientID, senderID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[pair{recipientID, senderID}] = true
	return nil
}

type mockBanRepo struct {
	mu   sync.Mutex
	rows map[int64]bool
	err  error
}

func (m *mockBanRepo) IsBanned(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.rows[id], nil
}

func (m *mockBanRepo) Ban(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = true
	return nil
}

func (m *mockBanRepo) Unban(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *mockBanRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type mockThreadRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Thread
	index  map[pair]int64
}

func (m *mockThreadRepo) ThreadFor(ctx context.Context, recipientID, senderID int64, now time.Time) (domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{recipientID, senderID}
	if id, ok := m.index[key]; ok {
		row := m.rows[id]
		at := now
		row.UpdatedAt = &at
		m.rows[id] = row
		return row, nil
	}
	m.nextID++
	at := now
	row := domain.Thread{ID: m.nextID, RecipientID: recipientID, SenderID: senderID, CreatedAt: now, UpdatedAt: &at}
	m.rows[row.ID] = row
	m.index[key] = row.ID
	return row, nil
}

func (m *mockThreadRepo) Get(ctx context.Context, threadID int64) (domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[threadID]
	if !ok {
		return domain.Thread{}, domain.NotFoundError{Resource: "thread"}
	}
	return row, nil
}

func (m *mockThreadRepo) Recent(ctx context.Context, recipientID int64, limit int) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Thread
	for _, row := range m.rows {
		if row.RecipientID == recipientID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActiveAt().After(out[j].ActiveAt()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockThreadRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type mockRateRepo struct {
	mu   sync.Mutex
	rows map[pair]domain.RatePairState
}

func (m *mockRateRepo) CheckAndConsume(ctx context.Context, senderID, recipientID int64, p domain.RatePolicy, now time.Time) (domain.RateDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{senderID, recipientID}
	state, ok := m.rows[key]
	if !ok {
		m.rows[key] = domain.FirstContact(senderID, recipientID, now, p)
		return domain.Accepted(), nil
	}
	next, decision := state.Consume(now, p)
	if decision.Accepted {
		m.rows[key] = next
	}
	return decision, nil
}

type mockPendingRepo struct {
	mu   sync.Mutex
	rows map[int64]int64
}

func (m *mockPendingRepo) Set(ctx context.Context, senderID, targetID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[senderID] = targetID
	return nil
}

func (m *mockPendingRepo) Get(ctx context.Context, senderID int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.rows[senderID]
	return target, ok, nil
}

func (m *mockPendingRepo) Clear(ctx context.Context, senderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, senderID)
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []anonbot.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event anonbot.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

type mockObserver struct {
	mu   sync.Mutex
	seen map[string][]domain.OutcomeKind
}

func (m *mockObserver) Observe(operation string, o domain.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[operation] = append(m.seen[operation], o.Kind)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	relay      *RelayUsecase
	identities *mockIdentityRepo
	blocks     *mockBlockRepo
	bans       *mockBanRepo
	threads    *mockThreadRepo
	pending    *mockPendingRepo
	events     *mockPublisher
	observer   *mockObserver
	clock      *fakeClock
}

func newFixture(mutate func(*domain.Config)) *fixture {
	config := domain.DefaultConfig()
	config.AdminID = 999
	config.BotUsername = "anon_bot"
	if mutate != nil {
		mutate(&config)
	}

	f := &fixture{
		identities: newMockIdentityRepo(),
		blocks:     &mockBlockRepo{rows: map[pair]bool{}},
		bans:       &mockBanRepo{rows: map[int64]bool{}},
		threads:    &mockThreadRepo{rows: map[int64]domain.Thread{}, index: map[pair]int64{}},
		pending:    &mockPendingRepo{rows: map[int64]int64{}},
		events:     &mockPublisher{},
		observer:   &mockObserver{seen: map[string][]domain.OutcomeKind{}},
		clock:      &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	f.relay = NewRelayUsecase(config, Stores{
		Identities: f.identities,
		Blocks:     f.blocks,
		Bans:       f.bans,
		Threads:    f.threads,
		Rates:      &mockRateRepo{rows: map[pair]domain.RatePairState{}},
		Pending:    f.pending,
	},
		WithClock(f.clock.Now),
		WithEvents(f.events),
		WithObserver(f.observer),
	)
	return f
}
