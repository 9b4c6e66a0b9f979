package utils

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetParticipantCookie(rec, domain.Participant{UserID: "mod-1", Role: domain.RoleModerator})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	p, err := GetParticipant(req)
	require.NoError(t, err)
	assert.Equal(t, "mod-1", p.UserID)
	assert.True(t, p.IsModerator())
}

func TestDecodeParticipant(t *testing.T) {
	raw := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	p, err := DecodeParticipant(raw(`{"userId":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, p.Role)

	for name, value := range map[string]string{
		"not base64":   "%%%",
		"not json":     raw("alice"),
		"missing user": raw(`{"role":"moderator"}`),
		"bad user":     raw(`{"userId":"alice smith"}`),
		"unknown role": raw(`{"userId":"alice","role":"owner"}`),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeParticipant(value)
			assert.ErrorIs(t, err, ErrInvalidParticipant)
		})
	}
}

func TestRequireParticipant(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := RequireParticipant(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
}
