package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
	"github.com/qwerty-development/gym-webapp-sub000/internal/db"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
}

type service struct {
	tx         db.Transactor
	repo       Repository
	walletRepo wallet.Repository
	issuer     *auth.Issuer
}

func NewService(tx db.Transactor, repo Repository, walletRepo wallet.Repository, issuer *auth.Issuer) Service {
	return &service{
		tx:         tx,
		repo:       repo,
		walletRepo: walletRepo,
		issuer:     issuer,
	}
}

// Register creates the member and an empty wallet in one transaction.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var u *User
	err = s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		created, err := s.repo.Create(ctx, q, strings.TrimSpace(req.Name), email, passwordHash, auth.RoleMember)
		if err != nil {
			return err
		}
		if err := s.walletRepo.Create(ctx, q, created.ID); err != nil {
			return err
		}
		u = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *service) issue(u *User) (*LoginResponse, error) {
	pair, err := s.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{TokenPair: pair, User: *u}, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	access, claims, err := s.issuer.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: access, User: *u}, nil
}
