package schema

import (
	"io/fs"
	"net/http"
	"time"
)

// LoaderOptions configures how a Loader resolves sources. Remote documents
// are only fetched when an HTTP client is supplied or HTTP fallback is on.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS documents.
	FileSystem fs.FS

	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client when
	// HTTPClient is nil.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetches. Zero means no extra limit.
	RequestTimeout time.Duration

	// MaxBytes rejects documents larger than this size. Zero disables the
	// check.
	MaxBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources using a default client with timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

func WithMaxBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxBytes = limit
	}
}

// NewLoaderOptions applies options over the zero configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
