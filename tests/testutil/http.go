package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the response wrapper with its data left undecoded.
type Envelope struct {
	dto.Response
	Data json.RawMessage `json:"data"`
}

// DecodeEnvelope unmarshals the recorded response body.
func DecodeEnvelope(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// DataAs decodes the data field of a successful response into T.
func DataAs[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "expected success, got: %s", w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// AssertErrorCode checks status and the envelope's error code.
func AssertErrorCode(t testing.TB, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, "body: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, code, env.Error.Code)
	}
}
