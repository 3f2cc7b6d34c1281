package upload

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience keeps an upload ticket from being accepted as a session token.
const Audience = "upload"

var ErrInvalidTicket = errors.New("invalid upload ticket")

// Payload is what the client asked to upload. It travels inside the ticket
// and comes back unchanged on completion.
type Payload struct {
	DocumentID  *int64 `json:"documentId,omitempty"`
	ProcessID   *int64 `json:"processId,omitempty"`
	ProjectID   *int64 `json:"projectId,omitempty"`
	LinkType    string `json:"linkType,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type TicketClaims struct {
	Payload
	UserID    int64  `json:"user_id"`
	ObjectKey string `json:"object_key"`
	jwt.RegisteredClaims
}

func signTicket(secret []byte, claims TicketClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// verifyTicket checks signature, audience and expiry.
func verifyTicket(secret []byte, ticket string) (*TicketClaims, error) {
	var claims TicketClaims
	_, err := jwt.ParseWithClaims(ticket, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidTicket, err)
	}
	if claims.ObjectKey == "" || claims.UserID <= 0 {
		return nil, ErrInvalidTicket
	}
	return &claims, nil
}
