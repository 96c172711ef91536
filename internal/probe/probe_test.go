package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		timeout time.Duration
		wantErr bool
	}{
		{"ws ok", "ws://localhost:8080/echo", time.Second, false},
		{"wss ok", "wss://example.com/feed", time.Second, false},
		{"http scheme", "http://example.com", time.Second, true},
		{"no scheme", "localhost:8080", time.Second, true},
		{"missing host", "ws://", time.Second, true},
		{"zero timeout", "ws://localhost/", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := Target{URI: tt.uri, Timeout: tt.timeout}
			err := target.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindConfiguration, KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		headers, err := ParseHeaders(`{"Authorization": "Bearer x", "X-Probe": "1"}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Authorization": "Bearer x", "X-Probe": "1"}, headers)
	})

	t.Run("empty means none", func(t *testing.T) {
		headers, err := ParseHeaders("")
		require.NoError(t, err)
		assert.Nil(t, headers)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseHeaders(`Authorization: Bearer x`)
		require.Error(t, err)
		assert.Equal(t, KindConfiguration, KindOf(err))
	})

	t.Run("non-string values rejected", func(t *testing.T) {
		_, err := ParseHeaders(`{"retries": 3}`)
		require.Error(t, err)
		assert.Equal(t, KindConfiguration, KindOf(err))
	})
}

func TestOutcomeSuccess(t *testing.T) {
	assert.True(t, Outcome{Connected: true}.Success())
	assert.False(t, Outcome{Connected: false}.Success())
	assert.False(t, Outcome{Connected: true, Err: &Error{Kind: KindResponseTimeout}}.Success())
}
