package scrape_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/mock"
	"github.com/fwojciec/unscraper/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func harvester(text string, pages int) *mock.Harvester {
	return &mock.Harvester{
		HarvestFn: func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
			return &unscraper.Document{URL: url, Text: text, Pages: pages}, nil
		},
	}
}

func provider(complete func(ctx context.Context, req unscraper.CompletionRequest) (string, error)) *mock.CompleterProvider {
	return &mock.CompleterProvider{
		NewCompleterFn: func(ctx context.Context, apiKey string) (unscraper.Completer, error) {
			return &mock.Completer{CompleteFn: complete}, nil
		},
		ModelsFn: func() []string { return []string{"m1", "m2"} },
	}
}

func validRequest() unscraper.Request {
	return unscraper.Request{
		URL:       "https://shop.example/widgets",
		APIKey:    "key",
		Fields:    []string{"title", " price "},
		PageCount: 1,
	}
}

func TestService_Run(t *testing.T) {
	t.Parallel()

	t.Run("extracts and normalizes a single page", func(t *testing.T) {
		t.Parallel()

		var gotFields string
		svc := &scrape.Service{
			Harvester: harvester("Widget $19.99", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				gotFields = req.User
				return `{"listings":[{"title":"Widget","price":"$19.99"}]}`, nil
			}),
		}

		result, err := svc.Run(context.Background(), validRequest())

		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, unscraper.Record{"title": "Widget", "Price ($)": 19.99}, result.Rows[0])
		assert.Equal(t, 1, result.Pages)
		assert.Equal(t, 1, result.Chunks)
		assert.Empty(t, result.Failures)
		assert.NotEmpty(t, result.RunID)
		assert.Contains(t, gotFields, "title, price.")
	})

	t.Run("merges records from every chunk", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester(strings.Repeat("a", 25), 2),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				return `{"listings":[{"title":"x"}]}`, nil
			}),
			ChunkSize: 10,
		}

		result, err := svc.Run(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Chunks)
		assert.Len(t, result.Rows, 3)
	})

	t.Run("fails with no data when every chunk is empty", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester("nothing useful", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				return `{"listings":[]}`, nil
			}),
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.ENODATA, unscraper.ErrorCode(err))
		assert.Equal(t, scrape.NoDataMessage, unscraper.ErrorMessage(err))
	})

	t.Run("surfaces the rate limit wait hint when every chunk is exhausted", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester("text", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				return "", unscraper.RateLimited("7.5s")
			}),
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.ERATELIMIT, unscraper.ErrorCode(err))
		assert.Contains(t, unscraper.ErrorMessage(err), "Please wait 7.5s")
	})

	t.Run("surfaces the outage message when every chunk is exhausted", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester("text", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				return "", unscraper.Errorf(unscraper.EUNAVAILABLE, "The model service is temporarily unavailable.")
			}),
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.EUNAVAILABLE, unscraper.ErrorCode(err))
		assert.Equal(t, "The model service is temporarily unavailable.", unscraper.ErrorMessage(err))
	})

	t.Run("no data message counts failed chunks and names the last failure", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester("aaaabbbb", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				if strings.Contains(req.User, "bbbb") {
					return "", unscraper.RateLimited("2s")
				}
				return `{"listings":[]}`, nil
			}),
			ChunkSize: 4,
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.ENODATA, unscraper.ErrorCode(err))
		assert.Contains(t, unscraper.ErrorMessage(err), "1 of 2 chunks failed")
		assert.Contains(t, unscraper.ErrorMessage(err), "Please wait 2s")
	})

	t.Run("aborts on the first invalid credential error", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		svc := &scrape.Service{
			Harvester: harvester(strings.Repeat("b", 50), 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				calls.Add(1)
				return "", unscraper.Errorf(unscraper.EUNAUTHORIZED, "Invalid API key. Please check your API key and try again.")
			}),
			ChunkSize:   10,
			Concurrency: 1,
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.EUNAUTHORIZED, unscraper.ErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rejects invalid requests before any network activity", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: &mock.Harvester{
				HarvestFn: func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
					t.Fatal("harvester must not be called")
					return nil, nil
				},
			},
			Provider: &mock.CompleterProvider{
				NewCompleterFn: func(ctx context.Context, apiKey string) (unscraper.Completer, error) {
					t.Fatal("provider must not be called")
					return nil, nil
				},
			},
		}

		req := validRequest()
		req.PageCount = 11
		_, err := svc.Run(context.Background(), req)

		require.Error(t, err)
		assert.Equal(t, unscraper.EINVALID, unscraper.ErrorCode(err))
	})

	t.Run("maps completer construction failure to unauthorized", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: harvester("text", 1),
			Provider: &mock.CompleterProvider{
				NewCompleterFn: func(ctx context.Context, apiKey string) (unscraper.Completer, error) {
					return nil, errors.New("bad key format")
				},
				ModelsFn: func() []string { return []string{"m1"} },
			},
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.EUNAUTHORIZED, unscraper.ErrorCode(err))
		assert.Equal(t, "bad key format", unscraper.ErrorMessage(err))
	})

	t.Run("harvests the trimmed URL", func(t *testing.T) {
		t.Parallel()

		var got string
		svc := &scrape.Service{
			Harvester: &mock.Harvester{
				HarvestFn: func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
					got = url
					return &unscraper.Document{URL: url, Text: "Widget $19.99", Pages: 1}, nil
				},
			},
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				return `{"listings":[{"title":"Widget"}]}`, nil
			}),
		}
		req := validRequest()
		req.URL = "  https://shop.example/widgets \n"

		_, err := svc.Run(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "https://shop.example/widgets", got)
	})

	t.Run("fails with no data when the harvested page has no text", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		svc := &scrape.Service{
			Harvester: harvester("", 1),
			Provider: provider(func(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
				calls.Add(1)
				return `{"listings":[]}`, nil
			}),
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.ENODATA, unscraper.ErrorCode(err))
		assert.Equal(t, scrape.NoDataMessage, unscraper.ErrorMessage(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("passes harvest errors through", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: &mock.Harvester{
				HarvestFn: func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
					return nil, unscraper.Errorf(unscraper.EFETCH, "Failed to load page")
				},
			},
			Provider: provider(nil),
		}

		_, err := svc.Run(context.Background(), validRequest())

		assert.Equal(t, unscraper.EFETCH, unscraper.ErrorCode(err))
	})

	t.Run("wraps unclassified errors as internal", func(t *testing.T) {
		t.Parallel()

		svc := &scrape.Service{
			Harvester: &mock.Harvester{
				HarvestFn: func(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
					return nil, errors.New("browser disconnected")
				},
			},
			Provider: provider(nil),
		}

		_, err := svc.Run(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, unscraper.EINTERNAL, unscraper.ErrorCode(err))
		assert.Equal(t, "browser disconnected", unscraper.ErrorMessage(err))
		var appErr *unscraper.Error
		assert.True(t, errors.As(err, &appErr))
	})

	t.Run("uses a custom extractor and logs the run id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		svc := &scrape.Service{
			Harvester: harvester("text", 1),
			Provider:  provider(nil),
			NewExtractor: func(c unscraper.Completer) unscraper.ChunkExtractor {
				return &mock.ChunkExtractor{
					ExtractChunkFn: func(ctx context.Context, chunk unscraper.Chunk, fields []string, model string) ([]unscraper.Record, error) {
						assert.Equal(t, []string{"title", "price"}, fields)
						return []unscraper.Record{{"title": "custom"}}, nil
					},
				}
			},
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		}

		result, err := svc.Run(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Equal(t, "custom", result.Rows[0]["title"])
		assert.Contains(t, buf.String(), "run_id="+result.RunID)
		assert.Contains(t, buf.String(), "run complete")
	})
}
