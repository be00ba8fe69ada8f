package openapi

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-gameportal/pkg/fetch"
)

// Loader fetches contract documents from different sources (filesystem,
// fs.FS, HTTP). Implementations live under internal/openapi but satisfy this
// contract.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources. Loading stays
// offline-first: remote sources only work when a fetch client is supplied or
// the HTTP fallback is enabled explicitly.
type LoaderOptions struct {
	// FileSystem enables loading from an abstract filesystem; defaults to the
	// operating system if nil.
	FileSystem fs.FS

	// Fetcher handles URL sources with retry and timeout behaviour. Nil means
	// HTTP sources are disabled unless AllowHTTPFallback is true.
	Fetcher *fetch.Client

	// AllowHTTPFallback builds a default fetch client when none is supplied.
	AllowHTTPFallback bool

	// Policy overrides the retry policy of a fallback-built fetch client.
	Policy *fetch.Policy
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for relative paths.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithFetcher injects a fetch client for remote contract documents.
func WithFetcher(client *fetch.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Fetcher = client
	}
}

// WithHTTPFallback enables remote loading through a default fetch client,
// optionally overriding its retry policy.
func WithHTTPFallback(policy *fetch.Policy) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.Policy = policy
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
