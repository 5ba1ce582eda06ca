package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"securecheck/internal/metrics"
	"securecheck/internal/officer"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown so both
// failure paths pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("securecheck-unknown-officer"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generate dummy hash: %v", err))
	}
	return hash
})

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	Officer     *officer.Officer `json:"officer"`
}

type Service struct {
	officers officer.Repository
	tokens   *TokenIssuer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(officers officer.Repository, tokens *TokenIssuer, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		officers: officers,
		tokens:   tokens,
		logger:   logger,
		metrics:  m,
	}
}

// Validate checks username and password against the stored bcrypt hash.
func (s *Service) Validate(ctx context.Context, username, password string) (*officer.Officer, error) {
	o, err := s.officers.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, officer.ErrOfficerNotFound) {
			s.logger.ErrorContext(ctx, "officer lookup failed", "error", err)
			return nil, fmt.Errorf("lookup officer: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		s.metrics.RecordLogin(ctx, false)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(o.Password), []byte(password)); err != nil {
		s.metrics.RecordLogin(ctx, false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(ctx, true)
	return o, nil
}

// Login validates the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	o, err := s.Validate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(o)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token,
		Officer:     o,
	}, nil
}

// Resolve returns the officer a valid access token belongs to.
func (s *Service) Resolve(ctx context.Context, token string) (*officer.Officer, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	o, err := s.officers.GetByID(ctx, claims.OfficerID)
	if err != nil {
		if errors.Is(err, officer.ErrOfficerNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return o, nil
}
