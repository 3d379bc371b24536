// Package extract turns text chunks into records with a language model,
// retrying across a rotating pool of models.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fwojciec/unscraper"
)

// Ensure Client implements unscraper.ChunkExtractor at compile time.
var _ unscraper.ChunkExtractor = (*Client)(nil)

// Client performs one extraction call per chunk.
type Client struct {
	completer unscraper.Completer
}

// NewClient creates a new Client.
func NewClient(completer unscraper.Completer) *Client {
	return &Client{completer: completer}
}

// ExtractChunk asks model for the requested fields in chunk and validates
// the listings contract. Provider errors are returned unchanged.
func (c *Client) ExtractChunk(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) ([]unscraper.Record, error) {
	completion, err := c.completer.Complete(ctx, unscraper.CompletionRequest{
		Model:       model,
		System:      SystemPrompt,
		User:        BuildUserPrompt(fields, chunk.Text),
		Temperature: Temperature,
	})
	if err != nil {
		return nil, err
	}

	salvaged, ok := unscraper.SalvageJSON(completion)
	if !ok {
		return nil, unscraper.Errorf(unscraper.EPARSE, "model response for chunk %d has no listings object", chunk.Index)
	}
	return ParseListings(salvaged)
}

// ParseListings decodes a {"listings": [...]} object into records. Every
// listing must be a JSON object; values are converted to strings.
func ParseListings(s string) ([]unscraper.Record, error) {
	var payload struct {
		Listings []json.RawMessage `json:"listings"`
	}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, unscraper.Errorf(unscraper.EPARSE, "decoding listings: %s", err)
	}

	records := make([]unscraper.Record, 0, len(payload.Listings))
	for i, raw := range payload.Listings {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var obj map[string]any
		if err := dec.Decode(&obj); err != nil || obj == nil {
			return nil, unscraper.Errorf(unscraper.EPARSE, "listing %d is not an object", i)
		}

		rec := make(unscraper.Record, len(obj))
		for k, v := range obj {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}
