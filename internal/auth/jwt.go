package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/besuhoff/dark-ritual-go/internal/config"
)

var ErrMissingToken = errors.New("missing token")

// Claims represents the JWT claims
type Claims struct {
	PlayerID string `json:"sub"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new JWT token for a guest player
func GenerateToken(playerID, username string) (string, error) {
	expirationTime := time.Now().Add(time.Duration(config.AppConfig.AccessTokenExpireMinutes) * time.Minute)

	claims := &Claims{
		PlayerID: playerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SecretKey))
}

// ValidateToken validates a JWT token and returns its claims
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(config.AppConfig.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.PlayerID == "" {
		return nil, errors.New("invalid player ID in token")
	}

	return claims, nil
}

// FromRequest reads the bearer token, or the token query parameter that
// browsers use for WebSocket upgrades.
func FromRequest(r *http.Request) (*Claims, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	return ValidateToken(token)
}
