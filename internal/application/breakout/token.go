package breakout

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hilthontt/breakout/internal/domain"
)

type joinClaims struct {
	RoomID    string `json:"rid"`
	MeetingID string `json:"mid"`
	jwt.RegisteredClaims
}

// tokenSigner turns join grants into HS256 tokens. The token ID is the
// grant ID; single use is enforced by the grant store, not the token.
type tokenSigner struct {
	secret []byte
}

func newTokenSigner(secret string) *tokenSigner {
	if secret == "" {
		// Per-process secret: tokens do not survive a restart.
		secret = uuid.NewString()
	}
	return &tokenSigner{secret: []byte(secret)}
}

func (s *tokenSigner) sign(g *domain.JoinGrant) (string, error) {
	claims := joinClaims{
		RoomID:    g.BreakoutRoomID,
		MeetingID: g.ParentMeetingID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        g.ID,
			Subject:   g.UserID,
			IssuedAt:  jwt.NewNumericDate(g.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(g.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign join token: %w", err)
	}
	return token, nil
}

// parse checks the signature and checks expiry against now rather than the
// wall clock.
func (s *tokenSigner) parse(raw string, now time.Time) (*joinClaims, error) {
	claims := &joinClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidGrant, err.Error())
	}

	if claims.ID == "" || claims.Subject == "" || claims.RoomID == "" || claims.MeetingID == "" {
		return nil, domain.ErrInvalidGrant
	}
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, domain.ErrGrantExpired
	}

	return claims, nil
}
