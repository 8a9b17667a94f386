package qdrant

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
)

const (
	defaultHost         = "localhost"
	defaultPort         = 6334
	defaultCollection   = "file_data"
	defaultSearchEffort = 128
)

type options struct {
	host         string
	port         int
	apiKey       string
	useTLS       bool
	collection   string
	searchEffort uint64
	logger       *slog.Logger
}

type Option func(*options) error

func defaultOptions() *options {
	return &options{
		host:         defaultHost,
		port:         defaultPort,
		collection:   defaultCollection,
		searchEffort: defaultSearchEffort,
		logger:       slog.Default(),
	}
}

// WithURL sets host, port and TLS from a URL such as "http://localhost:6334".
// A bare "host:port" is accepted. An https scheme enables TLS.
func WithURL(raw string) Option {
	return func(o *options) error {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			u, err = url.Parse("grpc://" + raw)
			if err != nil {
				return fmt.Errorf("invalid vector store url %q: %w", raw, err)
			}
		}
		if u.Hostname() == "" {
			return fmt.Errorf("invalid vector store url %q: missing host", raw)
		}
		o.host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid vector store port %q: %w", p, err)
			}
			o.port = port
		}
		o.useTLS = u.Scheme == "https"
		return nil
	}
}

func WithAPIKey(key string) Option {
	return func(o *options) error {
		o.apiKey = key
		return nil
	}
}

func WithCollection(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("collection name must not be empty")
		}
		o.collection = name
		return nil
	}
}

// WithSearchEffort sets the default HNSW ef used when a query leaves it unset.
func WithSearchEffort(ef uint64) Option {
	return func(o *options) error {
		o.searchEffort = ef
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
