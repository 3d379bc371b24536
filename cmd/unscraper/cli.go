package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/unscraper"
)

const providerGemini = "gemini"

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Extractor unscraper.Extractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug        bool    `help:"Log pipeline operations to stderr"`
	Provider     string  `default:"groq" enum:"groq,gemini" help:"Model provider (${enum})"`
	GroqAPIKey   string  `name:"groq-api-key" env:"GROQ_API_KEY" help:"Default Groq API key"`
	GeminiAPIKey string  `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Default Gemini API key"`
	ChunkSize    int     `default:"10000" help:"Maximum characters per model call"`
	MaxAttempts  int     `default:"3" help:"Attempts per chunk before it is skipped"`
	Concurrency  int     `short:"c" default:"8" help:"Concurrent model calls"`
	RPS          float64 `name:"rps" default:"0" help:"Model calls per second per model (0 disables pacing)"`

	Extract ExtractCmd `cmd:"" help:"Extract records from a URL"`
	Serve   ServeCmd   `cmd:"" help:"Serve the extraction API over HTTP"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string        `arg:"" help:"Page to start from"`
	Fields  []string      `short:"f" required:"" help:"Comma-separated fields to extract"`
	Pages   int           `short:"p" default:"1" help:"Pages to follow (1-10)"`
	APIKey  string        `name:"api-key" help:"API key for this run (overrides the provider default)"`
	Format  string        `short:"o" default:"table" enum:"table,csv,json,xml" help:"Output format (${enum})"`
	Output  string        `short:"O" type:"path" help:"Write to this file, or to a derived file name in this directory, instead of stdout"`
	Timeout time.Duration `default:"5m" help:"Abort the run after this long"`
}

func (c *ExtractCmd) request() unscraper.Request {
	return unscraper.Request{
		URL:       strings.TrimSpace(c.URL),
		APIKey:    c.APIKey,
		Fields:    c.Fields,
		PageCount: c.Pages,
	}
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr         string   `default:":8000" env:"UNSCRAPER_ADDR" help:"Listen address"`
	RequestLimit int      `default:"30" help:"Extraction requests per minute per client IP (0 disables)"`
	AllowOrigin  []string `name:"allow-origin" help:"Origins allowed to call the API from a browser"`
}
