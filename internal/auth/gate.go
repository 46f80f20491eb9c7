// Package auth gates the administrative upload path behind one shared password.
package auth

import (
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"leadboard/internal/config"
	"leadboard/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// hashCost is the bcrypt cost used when hashing a plaintext password from config
var hashCost = bcrypt.DefaultCost

// Gate checks the shared admin password and issues signed session tokens
type Gate struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGate builds a gate from the admin config. A configured bcrypt hash wins over
// the plaintext password. Without a session secret a random one is generated, so
// tokens do not survive a restart.
func NewGate(cfg config.AdminConfig) (*Gate, error) {
	var hash []byte
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, &errors.AppError{Code: errors.CodeConfigInvalid, Message: "ADMIN_PASSWORD_HASH is not a bcrypt hash", Cause: err}
		}
		hash = []byte(cfg.PasswordHash)
	} else {
		if cfg.Password == "" {
			return nil, errors.ConfigInvalid("admin password is required")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		hash = h
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Printf("[Gate] SESSION_SECRET not set, using a random secret; sessions end on restart")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	return &Gate{hash: hash, secret: secret, ttl: ttl, now: time.Now}, nil
}

// Login checks password and returns a new admin session with its signed token
func (g *Gate) Login(password string) (Session, string, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return Anonymous(), "", errors.Unauthorized("invalid password")
	}

	now := g.now().UTC().Truncate(time.Second)
	sess := Session{
		ID:        uuid.New().String(),
		Admin:     true,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	}

	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Anonymous(), "", fmt.Errorf("failed to sign session token: %w", err)
	}

	log.Printf("[Gate] Admin session %s issued, expires %s", sess.ID[:8], sess.ExpiresAt.Format(time.RFC3339))
	return sess, token, nil
}

// Verify parses a session token. Bad signatures, other algorithms and expired
// tokens fail with UNAUTHORIZED.
func (g *Gate) Verify(token string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return Anonymous(), &errors.AppError{Code: errors.CodeUnauthorized, Message: "invalid session token", Cause: err}
	}

	sess := Session{ID: claims.ID, Admin: true}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	sess.ExpiresAt = claims.ExpiresAt.Time
	return sess, nil
}

// TTL returns the session lifetime
func (g *Gate) TTL() time.Duration {
	return g.ttl
}
