//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/extract"
	"github.com/fwojciec/unscraper/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_Integration_ExtractsListings(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := gemini.NewProvider()
	completer, err := provider.NewCompleter(ctx, apiKey)
	require.NoError(t, err)

	client := extract.NewClient(completer)
	records, err := client.ExtractChunk(ctx,
		unscraper.Chunk{Text: "Oak desk - $120. Pine shelf - $45."},
		[]string{"title", "price"},
		provider.Models()[0],
	)

	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Contains(t, records[0], "title")
	assert.Contains(t, records[0], "price")
}

func TestProvider_Integration_InvalidKey(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := gemini.NewProvider()
	completer, err := provider.NewCompleter(ctx, "invalid-key")
	require.NoError(t, err)

	_, err = completer.Complete(ctx, unscraper.CompletionRequest{
		Model: provider.Models()[0],
		User:  "hello",
	})

	require.Error(t, err)
	assert.Equal(t, unscraper.EUNAUTHORIZED, unscraper.ErrorCode(err))
}
