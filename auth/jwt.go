package auth

import (
	"errors"
	"time"

	"process-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeAccess = "access"
	PurposeInvite = "invite"
)

var ErrWrongPurpose = errors.New("token issued for another purpose")

// Claims identify a user. Purpose keeps an invite link from being used as a
// session token and the other way around.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Role    string `json:"role,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateJWT issues a session token.
func GenerateJWT(userID int64, role string) (string, *Claims, error) {
	ttl := time.Duration(config.AppConfig.JWTExpirationHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return sign(Claims{UserID: userID, Role: role, Purpose: PurposeAccess}, ttl)
}

// GenerateInviteToken issues the token embedded in invitation links.
func GenerateInviteToken(userID int64, email string) (string, *Claims, error) {
	return sign(Claims{UserID: userID, Email: email, Purpose: PurposeInvite}, 24*time.Hour)
}

func sign(claims Claims, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret())
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// VerifyJWT checks signature, expiry and purpose.
func VerifyJWT(tokenString, purpose string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return &claims, nil
}
