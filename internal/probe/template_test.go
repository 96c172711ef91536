package probe

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTemplate(t *testing.T) {
	assert.False(t, HasTemplate("plain message"))
	assert.False(t, HasTemplate(""))
	assert.True(t, HasTemplate(`{"id": "{{uuid}}"}`))
	assert.True(t, HasTemplate("probe {{seq}}"))
}

func TestPayloadTemplate(t *testing.T) {
	t.Run("uuid differs per render", func(t *testing.T) {
		tmpl, err := ParsePayload(`{"id": "{{uuid}}"}`)
		require.NoError(t, err)

		first, err := tmpl.Render(1)
		require.NoError(t, err)
		second, err := tmpl.Render(1)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Contains(t, first, `"id": "`)
	})

	t.Run("seq substitution", func(t *testing.T) {
		tmpl, err := ParsePayload("probe {{seq}}")
		require.NoError(t, err)

		out, err := tmpl.Render(7)
		require.NoError(t, err)
		assert.Equal(t, "probe 7", out)
	})

	t.Run("randomInt stays in range", func(t *testing.T) {
		tmpl, err := ParsePayload(`{{randomInt 10 20}}`)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			out, err := tmpl.Render(i)
			require.NoError(t, err)

			n, err := strconv.Atoi(out)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 10)
			assert.Less(t, n, 20)
		}
	})

	t.Run("randomChoice picks from the list", func(t *testing.T) {
		tmpl, err := ParsePayload(`{{randomChoice "a" "b" "c"}}`)
		require.NoError(t, err)

		out, err := tmpl.Render(1)
		require.NoError(t, err)
		assert.Contains(t, []string{"a", "b", "c"}, out)
	})

	t.Run("invalid template is a configuration error", func(t *testing.T) {
		_, err := ParsePayload("{{seq")
		require.Error(t, err)
		assert.Equal(t, KindConfiguration, KindOf(err))
	})
}
