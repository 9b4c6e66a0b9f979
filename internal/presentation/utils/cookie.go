package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	apijson "github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/validate"
)

const CookieParticipant = "participant"

var (
	ErrNoParticipant      = errors.New("participant cookie is missing")
	ErrInvalidParticipant = errors.New("participant cookie could not be verified")
)

// GetParticipant reads the caller identity asserted by the participant
// cookie. The cookie is base64 encoded JSON of domain.Participant.
func GetParticipant(r *http.Request) (domain.Participant, error) {
	cookie, err := r.Cookie(CookieParticipant)
	if err != nil {
		return domain.Participant{}, ErrNoParticipant
	}

	return DecodeParticipant(cookie.Value)
}

func DecodeParticipant(value string) (domain.Participant, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return domain.Participant{}, ErrInvalidParticipant
	}

	var p domain.Participant
	if err := json.Unmarshal(decoded, &p); err != nil {
		return domain.Participant{}, ErrInvalidParticipant
	}

	if err := validate.Identifier("userId")(p.UserID); err != nil {
		return domain.Participant{}, ErrInvalidParticipant
	}
	if p.Role == "" {
		p.Role = domain.RoleViewer
	}
	if p.Role != domain.RoleViewer && p.Role != domain.RoleModerator {
		return domain.Participant{}, ErrInvalidParticipant
	}

	return p, nil
}

func EncodeParticipant(p domain.Participant) string {
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}

func SetParticipantCookie(w http.ResponseWriter, p domain.Participant) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieParticipant,
		Value:    EncodeParticipant(p),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

// RequireParticipant writes 401 and reports false when the caller has no
// valid participant cookie.
func RequireParticipant(w http.ResponseWriter, r *http.Request) (domain.Participant, bool) {
	p, err := GetParticipant(r)
	if err != nil {
		apijson.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return domain.Participant{}, false
	}
	return p, true
}
