package session

import (
	"sync"

	"github.com/azee-ka/4space-super-sub001/config"
	apperrors "github.com/azee-ka/4space-super-sub001/pkg/errors"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the authenticated user as reported by the auth backend.
type Session struct {
	UserID uuid.UUID
	Email  string
}

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider verifies backend-issued access tokens and exposes the current
// session plus a changed-notification stream. Read-only: it never mints
// or refreshes tokens itself.
type Provider struct {
	secret []byte
	logger logger.Logger

	mu       sync.RWMutex
	current  *Session
	watchers []chan Session
}

func NewProvider(cfg *config.Config, logger logger.Logger) *Provider {
	return &Provider{
		secret: []byte(cfg.Session.Secret),
		logger: logger,
	}
}

// Accept verifies an access token and installs it as the current session,
// notifying watchers.
func (p *Provider) Accept(tokenString string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrSessionExpired
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		p.logger.Warn("rejected access token", "err", err)
		return Session{}, apperrors.ErrSessionExpired
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Session{}, apperrors.ErrSessionExpired
	}

	s := Session{UserID: userID, Email: c.Email}

	p.mu.Lock()
	p.current = &s
	watchers := make([]chan Session, len(p.watchers))
	copy(watchers, p.watchers)
	p.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- s:
		default:
		}
	}
	return s, nil
}

// Clear drops the current session (logout).
func (p *Provider) Clear() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

// Current returns the active session, if any.
func (p *Provider) Current() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return Session{}, false
	}
	return *p.current, true
}

// Changes returns a stream delivering each newly accepted session.
func (p *Provider) Changes() <-chan Session {
	ch := make(chan Session, 1)
	p.mu.Lock()
	p.watchers = append(p.watchers, ch)
	p.mu.Unlock()
	return ch
}
