package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vaultEnvelopes/internal/database"
)

// ErrInvalidCredentials 用户名或口令错误。
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminRepository 是 Authenticator 依赖的管理员存储。
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (database.Admin, error)
	FindByID(ctx context.Context, id uint) (database.Admin, error)
	Create(ctx context.Context, username, passwordHash string) (database.Admin, error)
}

// Provisioning holds the environment credentials that may create the first admin on login.
type Provisioning struct {
	Username string
	Password string
	Enabled  bool
}

func (p Provisioning) matches(username, password string) bool {
	return p.Enabled && p.Username != "" && p.Password != "" &&
		username == p.Username && password == p.Password
}

// Authenticator 校验管理员凭据并签发令牌。
type Authenticator struct {
	admins    AdminRepository
	tokens    *AuthService
	provision Provisioning
	logger    *slog.Logger
}

func NewAuthenticator(admins AdminRepository, tokens *AuthService, provision Provisioning, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{admins: admins, tokens: tokens, provision: provision, logger: logger}
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresIn string
	Admin     database.Admin
}

// Login 校验凭据。库中不存在该用户名且凭据与环境变量一致时，会自动创建管理员。
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	admin, err := a.admins.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if !CheckPasswordHash(password, admin.PasswordHash) {
			return Session{}, ErrInvalidCredentials
		}
	case errors.Is(err, database.ErrNotFound):
		if !a.provision.matches(username, password) {
			return Session{}, ErrInvalidCredentials
		}
		admin, err = a.provisionAdmin(ctx, username, password)
		if err != nil {
			return Session{}, err
		}
	default:
		return Session{}, fmt.Errorf("lookup admin: %w", err)
	}

	token, err := a.tokens.GenerateToken(admin.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresIn: a.tokens.ExpiresInLabel(), Admin: admin}, nil
}

func (a *Authenticator) provisionAdmin(ctx context.Context, username, password string) (database.Admin, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return database.Admin{}, err
	}
	admin, err := a.admins.Create(ctx, username, hashed)
	if err != nil {
		return database.Admin{}, err
	}
	a.logger.Warn("admin auto-provisioned from environment credentials",
		slog.String("username", username),
		slog.Uint64("admin_id", uint64(admin.ID)),
	)
	return admin, nil
}

// Verify resolves a bearer token to the admin it was issued for.
func (a *Authenticator) Verify(ctx context.Context, token string) (database.Admin, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return database.Admin{}, err
	}
	admin, err := a.admins.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Admin{}, ErrInvalidToken
		}
		return database.Admin{}, fmt.Errorf("lookup admin: %w", err)
	}
	return admin, nil
}
