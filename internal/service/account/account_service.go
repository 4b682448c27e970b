package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
)

const (
	maxPasswordBytes     = 72 // bcrypt input limit
	maxDisplayNameLength = 64
)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, input LoginInput) (auth.Token, error)
	Me(ctx context.Context, identityID int64) (*domain.Identity, error)
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

type LoginInput struct {
	Email    string
	Password string
}

type AccountService struct {
	identities repository.IdentityRepository
	tokens     auth.TokenIssuer
	bcryptCost int
	logger     *slog.Logger
}

type Option func(*AccountService)

func WithBcryptCost(cost int) Option {
	return func(s *AccountService) { s.bcryptCost = cost }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *AccountService) { s.logger = logger }
}

func NewAccountService(identities repository.IdentityRepository, tokens auth.TokenIssuer, opts ...Option) *AccountService {
	s := &AccountService{identities: identities, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name is longer than %d characters", domain.ErrValidation, maxDisplayNameLength)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{Email: email, DisplayName: name, PasswordHash: hash}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "identity registered", slog.Int64("identity_id", identity.ID))
	return identity, nil
}

// Login does not reveal whether the email exists.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (auth.Token, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return auth.Token{}, domain.ErrInvalidCredentials
	}
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return auth.Token{}, domain.ErrInvalidCredentials
		}
		return auth.Token{}, err
	}
	if !auth.VerifyPassword(identity.PasswordHash, input.Password) {
		return auth.Token{}, domain.ErrInvalidCredentials
	}

	return s.tokens.Issue(auth.Identity{ID: identity.ID, Email: identity.Email})
}

func (s *AccountService) Me(ctx context.Context, identityID int64) (*domain.Identity, error) {
	return s.identities.GetByID(ctx, identityID)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email %q is malformed", domain.ErrValidation, raw)
	}
	return email, nil
}

var _ AccountUseCase = (*AccountService)(nil)
