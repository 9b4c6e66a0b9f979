package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"wrapped timeout", fmt.Errorf("transfer t1: %w", domain.ErrTransferTimeout), http.StatusGatewayTimeout, "transfer_timeout"},
		{"consumed grant", domain.ErrGrantConsumed, http.StatusGone, "grant_consumed"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "boom")
		})
	}
}

func TestRead(t *testing.T) {
	type payload struct {
		Minutes int `json:"timeInMinutes"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"timeInMinutes":5}`))
	var p payload
	require.NoError(t, Read(rec, req, &p))
	assert.Equal(t, 5, p.Minutes)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"minutes":5}`))
	assert.Error(t, Read(rec, req, &p))

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(``))
	assert.Error(t, Read(rec, req, &p))

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"timeInMinutes":5}{}`))
	assert.Error(t, Read(rec, req, &p))
}
