package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

var tracer = otel.Tracer("usecase")

const (
	codeBytes       = 8
	maxCodeAttempts = 5
)

type IdentityUsecase struct {
	repo     IdentityRepository
	config   domain.Config
	now      func() time.Time
	generate func() (string, error)
}

func NewIdentityUsecase(repo IdentityRepository, config domain.Config) *IdentityUsecase {
	return &IdentityUsecase{
		repo:     repo,
		config:   config,
		now:      time.Now,
		generate: NewCode,
	}
}

// NewCode returns a random URL-safe inbox code.
func NewCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Ensure returns the identity, allocating a code and default settings on first contact.
func (uc *IdentityUsecase) Ensure(ctx context.Context, id int64) (domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.Ensure")
	defer span.End()

	identity, err := uc.repo.Get(ctx, id)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return domain.Identity{}, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := uc.generate()
		if err != nil {
			span.RecordError(err)
			return domain.Identity{}, err
		}

		created, err := uc.repo.Create(ctx, domain.Identity{
			ID:          id,
			Code:        code,
			AnonEnabled: true,
			BlockLinks:  uc.config.DefaultBlockLinks,
			CreatedAt:   uc.now().UTC(),
		})
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return domain.Identity{}, err
		}
		return created, nil
	}

	err = fmt.Errorf("could not allocate a unique code for %d after %d attempts", id, maxCodeAttempts)
	span.RecordError(err)
	return domain.Identity{}, err
}

func (uc *IdentityUsecase) Settings(ctx context.Context, id int64) (domain.Settings, error) {
	identity, err := uc.Ensure(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	return identity.Settings(), nil
}

func (uc *IdentityUsecase) ResolveByCode(ctx context.Context, code string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.ResolveByCode")
	defer span.End()

	return uc.repo.ResolveByCode(ctx, code)
}

func (uc *IdentityUsecase) SetAnonEnabled(ctx context.Context, id int64, enabled bool) error {
	return uc.repo.SetAnonEnabled(ctx, id, enabled)
}

func (uc *IdentityUsecase) SetBlockLinks(ctx context.Context, id int64, enabled bool) error {
	return uc.repo.SetBlockLinks(ctx, id, enabled)
}

func (uc *IdentityUsecase) ToggleAnon(ctx context.Context, id int64) (domain.Settings, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.ToggleAnon")
	defer span.End()

	s, err := uc.Settings(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := uc.repo.SetAnonEnabled(ctx, id, !s.AnonEnabled); err != nil {
		span.RecordError(err)
		return domain.Settings{}, err
	}
	s.AnonEnabled = !s.AnonEnabled
	return s, nil
}

func (uc *IdentityUsecase) ToggleBlockLinks(ctx context.Context, id int64) (domain.Settings, error) {
	ctx, span := tracer.Start(ctx, "Identity.Usecase.ToggleBlockLinks")
	defer span.End()

	s, err := uc.Settings(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := uc.repo.SetBlockLinks(ctx, id, !s.BlockLinks); err != nil {
		span.RecordError(err)
		return domain.Settings{}, err
	}
	s.BlockLinks = !s.BlockLinks
	return s, nil
}

// Link composes the personal inbox link for the given settings.
func (uc *IdentityUsecase) Link(s domain.Settings) string {
	return anonbot.ComposeInboxLink(uc.config.BotUsername, s.Code)
}

func (uc *IdentityUsecase) Count(ctx context.Context) (int64, error) {
	return uc.repo.Count(ctx)
}
