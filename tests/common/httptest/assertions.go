//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"rental-ledger/internal/handler/httperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccessResponse checks the status and decodes a 2xx body into target.
// A status mismatch stops the test since decoding the wrong shape only adds noise.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, target any) {
	t.Helper()

	require.Equal(t, wantStatus, w.Code, "body: %s", w.Body.String())
	if target == nil || wantStatus < 200 || wantStatus >= 300 {
		return
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
}

// AssertErrorResponse checks the status and that the public message contains wantMsg.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantMsg string) {
	t.Helper()

	assert.Equal(t, wantStatus, w.Code, "body: %s", w.Body.String())

	var resp httperr.Response
	if !assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String()) {
		return
	}
	if wantMsg != "" {
		assert.Contains(t, resp.Error.Message, wantMsg)
	}
}
