package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// IdentityExpiration is the lifetime of tokens minted by GenerateToken.
	IdentityExpiration = 24 * time.Hour

	// TokenIssuer identifies tokens minted by this server.
	TokenIssuer = "drawify"
)

// ErrMissingUserID is returned for well-signed tokens without a userId claim.
var ErrMissingUserID = errors.New("token has no userId claim")

// GenerateToken signs an HS256 identity token for userID.
// A non-positive duration produces a token without expiry.
func GenerateToken(userID, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
			Issuer:   TokenIssuer,
		},
		UserID: userID,
	}
	if duration > 0 {
		payload.ExpiresAt = now.Add(duration).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(secretKey))
}

// ParseToken validates the signature and standard claims of tokenString.
func ParseToken(tokenString, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

// Verifier turns a raw token into a user id.
type Verifier func(token string) (string, error)

// NewVerifier returns the verifyToken collaborator bound to secretKey.
func NewVerifier(secretKey string) Verifier {
	return func(token string) (string, error) {
		payload, err := ParseToken(token, secretKey)
		if err != nil {
			return "", err
		}
		if payload.UserID == "" {
			return "", ErrMissingUserID
		}
		return payload.UserID, nil
	}
}
