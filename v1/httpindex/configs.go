package httpindex

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Default values for configuration
const (
	DefaultScheme  = "https"
	DefaultTimeout = 30 * time.Second
)

// Config holds connection settings for the HTTP data-plane client.
//
// Example (builder style):
//
//	cfg := httpindex.FromHost("my-index-abc123.svc.us-east1-gcp.pinecone.io").
//	    WithAPIKey(os.Getenv("PINECONE_API_KEY")).
//	    WithTimeout(10 * time.Second)
type Config struct {
	// Host of the index. "https://" is assumed when no scheme is given.
	Host string `yaml:"host" env:"PINECONE_INDEX_HOST"`

	// APIKey is sent in the Api-Key header of every request.
	APIKey string `yaml:"api_key" env:"PINECONE_API_KEY"`

	// APIVersion is sent in the X-Pinecone-Api-Version header.
	APIVersion string `yaml:"api_version" env:"PINECONE_API_VERSION"`

	// SourceTag is appended to the user agent.
	SourceTag string `yaml:"source_tag" env:"PINECONE_SOURCE_TAG"`

	// Compression gzips request bodies.
	Compression bool `yaml:"compression" env:"PINECONE_COMPRESSION"`

	// Timeout bounds calls whose context has no deadline. Zero disables it.
	Timeout time.Duration `yaml:"timeout" env:"PINECONE_TIMEOUT"`

	// HTTPClient is used instead of a default client. Its Transport is wrapped
	// for tracing; the client itself is not modified.
	HTTPClient *http.Client `yaml:"-"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		APIVersion: vectordb.DefaultAPIVersion,
		Timeout:    DefaultTimeout,
	}
}

// FromHost returns a default config pre-filled with host.
func FromHost(host string) *Config {
	cfg := DefaultConfig()
	cfg.Host = host
	return cfg
}

func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

func (c *Config) WithAPIVersion(version string) *Config {
	c.APIVersion = version
	return c
}

func (c *Config) WithSourceTag(tag string) *Config {
	c.SourceTag = tag
	return c
}

func (c *Config) WithCompression(enabled bool) *Config {
	c.Compression = enabled
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithHTTPClient(client *http.Client) *Config {
	c.HTTPClient = client
	return c
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("httpindex: host is required")
	}
	if c.APIKey == "" {
		return errors.New("httpindex: api key is required")
	}
	if c.Timeout < 0 {
		return errors.New("httpindex: timeout must not be negative")
	}
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	return nil
}

// BaseURL returns the parsed index URL derived from Host.
func (c *Config) BaseURL() (*url.URL, error) {
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if !strings.Contains(host, "://") {
		host = DefaultScheme + "://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("httpindex: invalid host %q: %w", c.Host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpindex: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("httpindex: invalid host %q", c.Host)
	}
	return u, nil
}
