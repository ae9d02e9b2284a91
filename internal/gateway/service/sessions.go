package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/idx"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// DefaultSessionTTL is used when SessionService.TTL is unset.
const DefaultSessionTTL = 12 * time.Hour

// Login is a freshly issued session token.
type Login struct {
	AccessToken string
	SessionID   string
	ExpiresAt   time.Time
}

// SessionService owns users and the sessions they present to banks. A
// session's protocol secret is sealed before it reaches the store.
type SessionService struct {
	Store    store.Store
	Hasher   cryptox.PasswordHasher
	Sealer   *cryptox.Sealer
	Signer   jwtx.Signer
	Issuer   string
	Audience []string
	TTL      time.Duration
	Now      func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Login verifies credentials and opens a session. The session's protocol
// user id is the username; its protocol secret is random per session.
func (s *SessionService) Login(ctx context.Context, username, password string) (Login, error) {
	l := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Login{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash so unknown users cost the same as wrong passwords.
			_, _ = s.Hasher.Hash(password)
			return Login{}, ErrInvalidCredentials
		}
		return Login{}, err
	}
	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", user.ID))
		return Login{}, ErrInvalidCredentials
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return Login{}, err
	}
	sealed, err := s.Sealer.SealString(secret)
	if err != nil {
		return Login{}, fmt.Errorf("seal protocol secret: %w", err)
	}

	now := s.now()
	sess := domain.Session{
		ID:             idx.NewString(),
		UserID:         user.ID,
		ProtocolUserID: user.Username,
		ProtocolSecret: sealed,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl()),
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return Login{}, fmt.Errorf("create session: %w", err)
	}

	claims := jwtx.NewSessionClaims(user.ID, sess.ID, user.Username, s.Issuer, s.Audience, s.ttl(), now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Login{}, fmt.Errorf("sign session token: %w", err)
	}

	l.Info("session opened", slog.String("user_id", user.ID), slog.String("session_id", sess.ID))
	return Login{AccessToken: token, SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout deletes a session. Its payments, consents and correlations go with it.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.Store.Sessions().DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionExpired
		}
		return err
	}
	slogx.FromContext(ctx).Info("session closed", slog.String("session_id", sessionID))
	return nil
}

// Get returns a live session with its protocol secret opened.
func (s *SessionService) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	sess, err := s.Store.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionExpired
		}
		return domain.Session{}, err
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, ErrSessionExpired
	}

	secret, err := s.Sealer.OpenString(sess.ProtocolSecret)
	if err != nil {
		return domain.Session{}, fmt.Errorf("open protocol secret: %w", err)
	}
	sess.ProtocolSecret = secret
	return sess, nil
}

// CreateUser adds a login. Usernames are unique.
func (s *SessionService) CreateUser(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 8 {
		return domain.User{}, fmt.Errorf("%w: username and a password of at least 8 characters are required", ErrInvalidRequest)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	now := s.now()
	u := domain.User{
		ID:           idx.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, fmt.Errorf("%w: username %q is taken", ErrInvalidRequest, username)
		}
		return domain.User{}, err
	}
	return u, nil
}

// Bootstrap creates the first user when none exist. It reports whether a
// user was created.
func (s *SessionService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, username, password); err != nil {
		return false, err
	}
	slogx.FromContext(ctx).Info("bootstrap user created", slog.String("username", username))
	return true, nil
}

// DeleteExpired removes sessions past expiry.
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.Store.Sessions().DeleteExpiredSessions(ctx, s.now())
}

