package pinecone

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

const (
	localImage = "ghcr.io/pinecone-io/pinecone-index:latest"
	localPort  = "5081"
	localKey   = "pclocal"
)

// LocalIndex is a Pinecone Local index container serving both transports on
// one port.
type LocalIndex struct {
	testcontainers.Container
	Host string
	Port string
}

// setupLocalIndex starts a dense cosine index of dimension 2.
func setupLocalIndex(ctx context.Context) (*LocalIndex, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portBindings := nat.PortMap{
		localPort + "/tcp": []nat.PortBinding{{HostPort: fmt.Sprintf("%d", port)}},
	}

	req := testcontainers.ContainerRequest{
		Image: localImage,
		Env: map[string]string{
			"PORT":        localPort,
			"INDEX_TYPE":  "serverless",
			"VECTOR_TYPE": "dense",
			"DIMENSION":   "2",
			"METRIC":      "cosine",
		},
		ExposedPorts: []string{localPort + "/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort(localPort + "/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start pinecone local container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, localPort)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &LocalIndex{Container: c, Host: host, Port: mapped.Port()}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// TestLocalIndex runs the round-trip scenarios against Pinecone Local over
// both transports.
func TestLocalIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	local, err := setupLocalIndex(ctx)
	require.NoError(t, err)
	defer func() {
		if err := local.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()
	t.Logf("Using Pinecone Local on %s:%s", local.Host, local.Port)

	configs := map[string]*Config{
		TransportGRPC: {
			Transport: TransportGRPC,
			Host:      net.JoinHostPort(local.Host, local.Port),
			APIKey:    localKey,
			Insecure:  true,
		},
		TransportHTTP: {
			Transport: TransportHTTP,
			Host:      "http://" + net.JoinHostPort(local.Host, local.Port),
			APIKey:    localKey,
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			cfg.APIVersion = vectordb.DefaultAPIVersion
			cfg.Timeout = 10 * time.Second
			svc, err := NewService(cfg, Options{})
			require.NoError(t, err)
			defer svc.Close()

			ns := uuid.NewString()
			md := metadata.MustMapOf(map[string]any{
				"type":      "number set",
				"rank":      3,
				"overhyped": false,
				"list":      []any{"2", "1"},
			})

			n, err := svc.Upsert(ctx, []vectordb.Vector{
				{ID: "a", Values: []float32{1, 0}, Metadata: md},
				{ID: "b", Values: []float32{0, 1}, Metadata: metadata.MustMapOf(map[string]any{"rank": 7})},
			}, ns)
			require.NoError(t, err)
			assert.Equal(t, uint32(2), n)

			var fetched *vectordb.FetchResponse
			require.Eventually(t, func() bool {
				fetched, err = svc.Fetch(ctx, []string{"a", "missing"}, ns)
				return err == nil && len(fetched.Vectors) == 1
			}, 10*time.Second, 200*time.Millisecond)
			assert.True(t, md.Equal(fetched.Vectors["a"].Metadata), "got %v", fetched.Vectors["a"].Metadata.Interface())

			query, err := svc.Query(ctx, vectordb.QueryRequest{
				Vector:          []float32{1, 0.1},
				TopK:            1,
				Namespace:       ns,
				IncludeMetadata: true,
			})
			require.NoError(t, err)
			require.Len(t, query.Matches, 1)
			assert.Equal(t, "a", query.Matches[0].ID)

			filter, err := vectordb.NewFilterSet(vectordb.Must(
				vectordb.NewNumericRange("rank", vectordb.NumericRange{Gt: vectordb.Float(5)}),
			)).Build()
			require.NoError(t, err)
			query, err = svc.Query(ctx, vectordb.QueryRequest{Vector: []float32{1, 0}, TopK: 5, Namespace: ns, Filter: filter})
			require.NoError(t, err)
			require.Len(t, query.Matches, 1)
			assert.Equal(t, "b", query.Matches[0].ID)

			require.NoError(t, svc.Delete(ctx, []string{"a", "b"}, ns))
			require.NoError(t, svc.Delete(ctx, []string{"a"}, ns))
		})
	}
}
