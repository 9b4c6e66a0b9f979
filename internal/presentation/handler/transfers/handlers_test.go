package transfers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
)

type confirmOnly struct {
	Coordinator
	confirmed []string
}

func (c *confirmOnly) ConfirmTransfer(_ context.Context, transferID string) error {
	if transferID != "t1" {
		return domain.ErrTransferNotFound
	}
	c.confirmed = append(c.confirmed, transferID)
	return nil
}

func TestConfirmTransferRequiresBridgeSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		transfer string
		want     int
	}{
		{name: "callback disabled", secret: "", header: "", transfer: "t1", want: http.StatusForbidden},
		{name: "missing header", secret: "s3cret", header: "", transfer: "t1", want: http.StatusUnauthorized},
		{name: "wrong secret", secret: "s3cret", header: "guess", transfer: "t1", want: http.StatusUnauthorized},
		{name: "unknown transfer", secret: "s3cret", header: "s3cret", transfer: "t2", want: http.StatusNotFound},
		{name: "confirmed", secret: "s3cret", header: "s3cret", transfer: "t1", want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &confirmOnly{}
			r := chi.NewRouter()
			r.Post("/transfers/{transferId}/confirm", NewHandler(c, tt.secret).ConfirmTransferHandler)

			req := httptest.NewRequest(http.MethodPost, "/transfers/"+tt.transfer+"/confirm", nil)
			if tt.header != "" {
				req.Header.Set(HeaderBridgeSecret, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, []string{"t1"}, c.confirmed)
			} else {
				assert.Empty(t, c.confirmed)
			}
		})
	}
}
