package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/response"
)

func TestEnvelopes(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		msg    string
	}{
		{"unauthorized", response.Unauthorized, http.StatusUnauthorized, response.MsgUnauthorized},
		{"forbidden", response.Forbidden, http.StatusForbidden, response.MsgForbidden},
		{"not found", response.NotFound, http.StatusNotFound, response.MsgNotFound},
		{"validation", func(w http.ResponseWriter) {
			response.ValidationError(w, map[string]string{"title": "The title must be at least 3 characters."})
		}, http.StatusUnprocessableEntity, response.MsgValidation},
		{"flash", func(w http.ResponseWriter) { response.Message(w, "Added to cart", nil) }, http.StatusOK, "Added to cart"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var env response.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tc.status, env.Status)
			assert.Equal(t, tc.msg, env.Message)
		})
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"price": "The price must be a valid amount."})

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "The price must be a valid amount.", env.Errors["price"])
	assert.Nil(t, env.Data)
}
