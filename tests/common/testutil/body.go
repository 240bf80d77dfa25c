//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Body normalizes v into a JSON object and applies muts, so a test can break
// one field of an otherwise valid request.
func Body(t *testing.T, v any, muts ...func(map[string]any)) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, mut := range muts {
		mut(m)
	}
	return m
}

func Set(key string, value any) func(map[string]any) {
	return func(m map[string]any) { m[key] = value }
}

func Without(key string) func(map[string]any) {
	return func(m map[string]any) { delete(m, key) }
}
