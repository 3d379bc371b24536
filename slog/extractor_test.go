package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/mock"
	uslog "github.com/fwojciec/unscraper/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingChunkExtractor_ExtractChunk(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.ChunkExtractor{
		ExtractChunkFn: func(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) ([]unscraper.Record, error) {
			return []unscraper.Record{{"title": "a"}, {"title": "b"}}, nil
		},
	}

	e := uslog.NewLoggingChunkExtractor(inner, logger)
	records, err := e.ExtractChunk(context.Background(), unscraper.Chunk{Index: 4, Text: "x"}, []string{"title"}, "m2")

	require.NoError(t, err)
	assert.Len(t, records, 2)
	output := buf.String()
	assert.Contains(t, output, "msg=\"chunk extraction\"")
	assert.Contains(t, output, "chunk=4")
	assert.Contains(t, output, "model=m2")
	assert.Contains(t, output, "records=2")
}
