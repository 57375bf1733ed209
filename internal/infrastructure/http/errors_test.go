package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crediadmin/internal/testutil"
)

// failingResponseWriter simulates a client that went away mid-response.
type failingResponseWriter struct {
	http.ResponseWriter
}

func (f *failingResponseWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		errors     []string
		want       []string
	}{
		{
			name:       "single error",
			statusCode: http.StatusBadRequest,
			message:    MessageValidation,
			errors:     []string{"id de cliente inválido"},
			want:       []string{"id de cliente inválido"},
		},
		{
			name:       "multiple errors",
			statusCode: http.StatusUnprocessableEntity,
			message:    MessageValidation,
			errors:     []string{"nombres es requerido", "email inválido"},
			want:       []string{"nombres es requerido", "email inválido"},
		},
		{
			name:       "nil errors encode as empty array",
			statusCode: http.StatusNotFound,
			message:    MessageNotFound,
			errors:     nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tt.statusCode, tt.message, tt.errors, testutil.NewNullLogger())

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.message, response.Message)
			assert.Equal(t, tt.want, response.Errors)
		})
	}
}

func TestWriteInternal_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternal(w, errors.New("pq: connection refused"), testutil.NewNullLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), MessageInternalDetail)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, map[string]string{"id": "abc"}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"abc"}`, w.Body.String())
}

func TestWriteJSON_EncodingFailureDoesNotPanic(t *testing.T) {
	w := &failingResponseWriter{ResponseWriter: httptest.NewRecorder()}

	logger := testutil.NewNullLogger()
	assert.NotPanics(t, func() {
		WriteError(w, http.StatusBadRequest, "Test", []string{"Error"}, logger)
	})
}
