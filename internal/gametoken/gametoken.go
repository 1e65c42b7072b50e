// Package gametoken issues and checks per-game access tokens.
//
// A token is an HS256 JWT whose "gid" claim names the one game it grants
// access to. The HTTP routes and the MCP tools share one Issuer, so a game
// created on either surface can only be played with its own token.
package gametoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long an issued token stays valid.
const TTL = 7 * 24 * time.Hour

var (
	// ErrMissing is returned by Verify for an empty token.
	ErrMissing = errors.New("missing game token")
	// ErrMismatch is returned by Verify when the token names another game.
	ErrMismatch = errors.New("token is for another game")
)

type claims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with one secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// New returns an Issuer. now defaults to time.Now.
func New(secret string, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), now: now}
}

// Sign creates a token for gameID and returns it with its expiry.
func (i *Issuer) Sign(gameID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(i.secret)
	return ss, exp, err
}

// Parse validates raw and returns the game it grants access to.
func (i *Issuer) Parse(raw string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", err
	}
	if c.GameID == "" {
		return "", errors.New("token has no game")
	}
	return c.GameID, nil
}

// Verify fails unless raw is a valid token for gameID.
func (i *Issuer) Verify(raw, gameID string) error {
	if raw == "" {
		return ErrMissing
	}
	gid, err := i.Parse(raw)
	if err != nil {
		return err
	}
	if gid != gameID {
		return ErrMismatch
	}
	return nil
}
