package unscraper_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/unscraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	t.Parallel()

	t.Run("empty text yields no chunks", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, unscraper.SplitText("", 10))
	})

	t.Run("concatenation reproduces input", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("abcdefghij", 25) + "xyz"
		chunks := unscraper.SplitText(text, 7)

		var sb strings.Builder
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.LessOrEqual(t, len([]rune(c.Text)), 7)
			if i < len(chunks)-1 {
				assert.Len(t, []rune(c.Text), 7)
			}
			sb.WriteString(c.Text)
		}
		assert.Equal(t, text, sb.String())
		assert.Len(t, chunks, 37)
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()

		chunks := unscraper.SplitText("€€€€€", 2)
		require.Len(t, chunks, 3)
		assert.Equal(t, "€€", chunks[0].Text)
		assert.Equal(t, "€", chunks[2].Text)
	})

	t.Run("non-positive size uses default", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("a", unscraper.DefaultChunkSize+1)
		chunks := unscraper.SplitText(text, 0)
		require.Len(t, chunks, 2)
		assert.Equal(t, "a", chunks[1].Text)
	})

	t.Run("25000 characters split into three chunks", func(t *testing.T) {
		t.Parallel()

		chunks := unscraper.SplitText(strings.Repeat("x", 25000), 10000)
		require.Len(t, chunks, 3)
		assert.Len(t, chunks[2].Text, 5000)
	})
}
