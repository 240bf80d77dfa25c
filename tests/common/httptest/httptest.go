//go:build unit || e2e

package httptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// PerformRequest JSON-encodes body (when non-nil) and sends it with an
// optional bearer token.
func PerformRequest(t *testing.T, router *gin.Engine, method, path string, body any, authToken string) *httptest.ResponseRecorder {
	t.Helper()

	headers := map[string]string{}
	if authToken != "" {
		headers["Authorization"] = "Bearer " + authToken
	}
	if body == nil {
		return serve(router, httptest.NewRequest(method, path, nil), headers)
	}

	raw, err := json.Marshal(body)
	require.NoError(t, err, "request body must encode to JSON")
	headers["Content-Type"] = "application/json"
	return serve(router, httptest.NewRequest(method, path, bytes.NewReader(raw)), headers)
}

// PerformRawRequest sends body untouched. Signed webhook payloads must reach
// the handler byte for byte.
func PerformRawRequest(t *testing.T, router *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	return serve(router, httptest.NewRequest(method, path, bytes.NewReader(body)), merged)
}

func DecodeResponseBody(t *testing.T, body io.Reader, target any) error {
	t.Helper()

	err := json.NewDecoder(body).Decode(target)
	require.NoError(t, err, "response body must decode")
	return err
}

func serve(router *gin.Engine, req *http.Request, headers map[string]string) *httptest.ResponseRecorder {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
