package grpcindex

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"google.golang.org/grpc"

	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Default values for configuration
const (
	DefaultPort           = "443"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRecvMsgSize = 64 << 20
)

// Config holds connection settings for the gRPC data-plane client.
//
// Example (builder style):
//
//	cfg := grpcindex.FromHost("my-index-abc123.svc.us-east1-gcp.pinecone.io").
//	    WithAPIKey(os.Getenv("PINECONE_API_KEY")).
//	    WithSourceTag("search_api").
//	    WithCompression(true)
type Config struct {
	// Host of the index, e.g. "my-index-abc123.svc.pinecone.io". A scheme is
	// stripped, a missing port defaults to 443, and a gRPC target with its own
	// resolver scheme (e.g. "dns:///host:443") is used as is.
	Host string `yaml:"host" env:"PINECONE_INDEX_HOST"`

	// APIKey is sent as the api-key metadata entry of every call.
	APIKey string `yaml:"api_key" env:"PINECONE_API_KEY"`

	// APIVersion is sent as x-pinecone-api-version.
	APIVersion string `yaml:"api_version" env:"PINECONE_API_VERSION"`

	// SourceTag is appended to the user agent.
	SourceTag string `yaml:"source_tag" env:"PINECONE_SOURCE_TAG"`

	// Insecure disables TLS. Only for local servers.
	Insecure bool `yaml:"insecure" env:"PINECONE_INSECURE"`

	// Compression enables gzip for requests.
	Compression bool `yaml:"compression" env:"PINECONE_COMPRESSION"`

	// Timeout bounds calls whose context has no deadline. Zero disables it.
	Timeout time.Duration `yaml:"timeout" env:"PINECONE_TIMEOUT"`

	// MaxRecvMsgSize caps the size of a response message in bytes.
	MaxRecvMsgSize int `yaml:"max_recv_msg_size" env:"PINECONE_MAX_RECV_MSG_SIZE"`

	// DialOptions are appended to the options built from this config.
	DialOptions []grpc.DialOption `yaml:"-"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		APIVersion:     vectordb.DefaultAPIVersion,
		Timeout:        DefaultTimeout,
		MaxRecvMsgSize: DefaultMaxRecvMsgSize,
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

func (c *Config) WithInsecure(insecure bool) *Config {
	c.Insecure = insecure
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

func (c *Config) WithMaxRecvMsgSize(n int) *Config {
	c.MaxRecvMsgSize = n
	return c
}

func (c *Config) WithDialOptions(opts ...grpc.DialOption) *Config {
	c.DialOptions = append(c.DialOptions, opts...)
	return c
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("grpcindex: host is required")
	}
	if c.APIKey == "" {
		return errors.New("grpcindex: api key is required")
	}
	if c.Timeout < 0 {
		return errors.New("grpcindex: timeout must not be negative")
	}
	if c.MaxRecvMsgSize < 0 {
		return errors.New("grpcindex: max receive message size must not be negative")
	}
	return nil
}

// Target returns the dial target derived from Host.
func (c *Config) Target() string {
	host := strings.TrimSpace(c.Host)
	if i := strings.Index(host, "://"); i >= 0 {
		scheme := strings.ToLower(host[:i])
		if scheme != "http" && scheme != "https" {
			return host
		}
		if u, err := url.Parse(host); err == nil {
			host = u.Host
		}
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, DefaultPort)
	}
	return host
}
