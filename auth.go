package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	hostTokenExpiry = 12 * time.Hour
	bcryptCost      = 10
	maxPasswordLen  = 64
)

var ErrInvalidToken = errors.New("invalid host token")

// Auth issues host tokens and checks room passwords
type Auth struct {
	jwtSecret []byte
}

// NewAuth creates an Auth. An empty secret is loaded from (or generated into) db.
func NewAuth(db *DB, secret []byte) *Auth {
	if len(secret) == 0 {
		secret = loadOrCreateSecret(db)
	}
	return &Auth{jwtSecret: secret}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Warn().Err(err).Msg("could not persist JWT secret")
		}
	}
	return secret
}

// IssueHostToken signs a token naming playerID as host of room code
func (a *Auth) IssueHostToken(code, playerID string) (string, error) {
	claims := jwt.MapClaims{
		"room": code,
		"pid":  playerID,
		"exp":  time.Now().Add(hostTokenExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateHostToken checks a host token for room code and returns the player id in it
func (a *Auth) ValidateHostToken(tokenStr, code string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	room, _ := claims["room"].(string)
	pid, _ := claims["pid"].(string)
	if room != code || pid == "" {
		return "", ErrInvalidToken
	}
	return pid, nil
}

// HashRoomPassword hashes a private room password. Empty means public.
func HashRoomPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, nil
	}
	if len(password) > maxPasswordLen {
		return nil, fmt.Errorf("password longer than %d characters", maxPasswordLen)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// CheckRoomPassword verifies a join attempt against a room's hash
func CheckRoomPassword(hash []byte, password string) error {
	if len(hash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}
