package embedding

import "net/http"

// Options is the keyword configuration passed to a backend. Each backend reads
// the fields it understands and ignores the rest.
type Options struct {
	ModelName           string //replaces "" and "default" during resolution
	Dimension           int
	APIKey              string
	BaseURL             string
	HTTPClient          *http.Client
	QueryInstruction    string
	DocumentInstruction string
	BatchSize           int
}

type Option func(*Options)

func WithModelName(name string) Option {
	return func(o *Options) { o.ModelName = name }
}

func WithDimension(dim int) Option {
	return func(o *Options) { o.Dimension = dim }
}

func WithAPIKey(key string) Option {
	return func(o *Options) { o.APIKey = key }
}

func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

// WithQueryInstruction prefixes queries, as BAAI models expect for retrieval.
func WithQueryInstruction(s string) Option {
	return func(o *Options) { o.QueryInstruction = s }
}

func WithDocumentInstruction(s string) Option {
	return func(o *Options) { o.DocumentInstruction = s }
}

func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

func BuildOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
