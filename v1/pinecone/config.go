package pinecone

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/pinecone-client/v1/grpcindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/httpindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Transport kinds accepted by Config.Transport.
const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// Environment variables read by ApplyEnv. They override values from a file.
const (
	EnvTransport   = "PINECONE_TRANSPORT"
	EnvHost        = "PINECONE_INDEX_HOST"
	EnvAPIKey      = "PINECONE_API_KEY"
	EnvAPIVersion  = "PINECONE_API_VERSION"
	EnvSourceTag   = "PINECONE_SOURCE_TAG"
	EnvInsecure    = "PINECONE_INSECURE"
	EnvCompression = "PINECONE_COMPRESSION"
	EnvTimeout     = "PINECONE_TIMEOUT"
)

// Config selects a transport and holds the settings shared by both.
//
// A YAML file looks like this (the api key usually comes from
// PINECONE_API_KEY):
//
//	transport: grpc
//	host: my-index-abc123.svc.us-east1-gcp.pinecone.io
//	source_tag: search_api
//	compression: true
//	timeout: 10s
type Config struct {
	// Transport is "grpc" (default) or "http"
	Transport string `yaml:"transport"`

	// Host of the index
	Host string `yaml:"host"`

	APIKey     string `yaml:"api_key"`
	APIVersion string `yaml:"api_version"`
	SourceTag  string `yaml:"source_tag"`

	// Insecure disables TLS for gRPC. For HTTP use an http:// host.
	Insecure bool `yaml:"insecure"`

	// Compression gzips requests
	Compression bool `yaml:"compression"`

	// Timeout bounds calls whose context has no deadline
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a gRPC config with the default API version and timeout.
func DefaultConfig() *Config {
	return &Config{
		Transport:  TransportGRPC,
		APIVersion: vectordb.DefaultAPIVersion,
		Timeout:    grpcindex.DefaultTimeout,
	}
}

// LoadConfig reads a YAML file over DefaultConfig, applies the PINECONE_*
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	return cfg, nil
}

// ApplyEnv overrides fields with the PINECONE_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvTransport); ok {
		c.Transport = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv(EnvHost); ok {
		c.Host = v
	}
	if v, ok := os.LookupEnv(EnvAPIKey); ok {
		c.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvAPIVersion); ok {
		c.APIVersion = v
	}
	if v, ok := os.LookupEnv(EnvSourceTag); ok {
		c.SourceTag = v
	}
	if v, ok := os.LookupEnv(EnvInsecure); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvInsecure, err)
		}
		c.Insecure = b
	}
	if v, ok := os.LookupEnv(EnvCompression); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCompression, err)
		}
		c.Compression = b
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the transport kind and the settings of that transport.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGRPC:
		return c.GRPCConfig().Validate()
	case TransportHTTP:
		return c.HTTPConfig().Validate()
	default:
		return fmt.Errorf("pinecone: unknown transport %q, want %q or %q", c.Transport, TransportGRPC, TransportHTTP)
	}
}

// GRPCConfig returns the gRPC client settings.
func (c *Config) GRPCConfig() *grpcindex.Config {
	return grpcindex.FromHost(c.Host).
		WithAPIKey(c.APIKey).
		WithAPIVersion(c.APIVersion).
		WithSourceTag(c.SourceTag).
		WithInsecure(c.Insecure).
		WithCompression(c.Compression).
		WithTimeout(c.Timeout)
}

// HTTPConfig returns the HTTP client settings.
func (c *Config) HTTPConfig() *httpindex.Config {
	return httpindex.FromHost(c.Host).
		WithAPIKey(c.APIKey).
		WithAPIVersion(c.APIVersion).
		WithSourceTag(c.SourceTag).
		WithCompression(c.Compression).
		WithTimeout(c.Timeout)
}
