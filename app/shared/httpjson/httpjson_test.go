package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecode(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name        string
		body        string
		wantErr     bool
		wantDetails map[string]string
	}{
		{name: "valid", body: `{"email":"a@b.co","password":"123456"}`},
		{name: "malformed", body: `{"email":`, wantErr: true},
		{name: "unknown field", body: `{"email":"a@b.co","password":"123456","admin":true}`, wantErr: true},
		{
			name:        "validation",
			body:        `{"email":"nope","password":"123"}`,
			wantErr:     true,
			wantDetails: map[string]string{"email": "email", "password": "min"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst signup
			err := Decode(r, v, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, verr.Details)
			}
		})
	}
}

func TestWriteValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidation(rec, &ValidationError{Msg: "validation failed", Details: map[string]string{"email": "required"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid_request", body.Code)
	assert.Equal(t, "required", body.Details["email"])
}
