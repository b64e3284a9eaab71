package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/pkg/utils"
	"reelhub/pkg/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email and a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthConfig struct {
	CredentialTTL time.Duration
	BcryptCost    int
}

type authService struct {
	accounts  ports.AccountRepository
	codec     ports.ClaimsCodec
	ttl       time.Duration
	cost      int
	dummyHash []byte
	logger    *zap.SugaredLogger
}

func NewAuthService(
	accounts ports.AccountRepository,
	codec ports.ClaimsCodec,
	cfg AuthConfig,
	logger *zap.SugaredLogger,
) (ports.AuthService, error) {
	if cfg.CredentialTTL <= 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the email is unknown so both failures cost the same.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to seed password guard: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(secret[:24], cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to seed password guard: %w", err)
	}

	return &authService{
		accounts:  accounts,
		codec:     codec,
		ttl:       cfg.CredentialTTL,
		cost:      cfg.BcryptCost,
		dummyHash: dummy,
		logger:    logger,
	}, nil
}

func (s *authService) Register(ctx context.Context, email, displayName, password string) (*domain.UserAccount, error) {
	return s.Provision(ctx, domain.NewAccount{
		Email:       email,
		DisplayName: displayName,
		Password:    password,
		Role:        domain.EndUser{},
	})
}

func (s *authService) Provision(ctx context.Context, req domain.NewAccount) (*domain.UserAccount, error) {
	email := utils.NormalizeEmail(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	account := &domain.UserAccount{
		Email:       email,
		DisplayName: displayName,
	}
	switch r := req.Role.(type) {
	case domain.EndUser:
		account.RoleKind = domain.RoleKindEndUser
	case domain.Publisher:
		account.RoleKind = domain.RoleKindPublisher
		account.PublisherID = r.PublisherID
	case domain.Admin:
		account.RoleKind = domain.RoleKindAdmin
		account.AdminSubtype = r.Subtype
	default:
		return nil, fmt.Errorf("%w: role is required", ErrInvalidSubmission)
	}
	if _, err := account.Role(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = string(hash)

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Infow("Account created",
		"account_id", account.ID,
		"role", account.RoleKind,
	)
	return account, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.UserAccount, *domain.Credential, error) {
	email = utils.NormalizeEmail(email)
	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debugw("Login for unknown email", "email", utils.MaskEmail(email))
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Debugw("Password mismatch", "account_id", account.ID)
		return nil, nil, ErrInvalidCredentials
	}

	cred, err := s.issue(account)
	if err != nil {
		return nil, nil, err
	}
	return account, cred, nil
}

// Refresh re-reads the account so a new credential reflects its current role.
func (s *authService) Refresh(ctx context.Context, claims *domain.ClaimSet) (*domain.Credential, error) {
	account, err := s.accounts.GetByID(ctx, claims.SubjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

func (s *authService) GetAccount(ctx context.Context, id int64) (*domain.UserAccount, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *authService) ListAccounts(ctx context.Context) ([]*domain.UserAccount, error) {
	return s.accounts.List(ctx)
}

func (s *authService) issue(account *domain.UserAccount) (*domain.Credential, error) {
	role, err := account.Role()
	if err != nil {
		return nil, fmt.Errorf("account %d has an invalid role: %w", account.ID, err)
	}

	token, err := s.codec.Issue(domain.ClaimSet{SubjectID: account.ID, Role: role}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("failed to read back credential: %w", err)
	}
	return &domain.Credential{Token: token, ExpiresAt: claims.ExpiresAt}, nil
}
