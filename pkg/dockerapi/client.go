// Package dockerapi is the boundary to the Docker engine: daemon
// ping and version queries plus the managed-plugin lifecycle. Results
// follow the same changed/failed/message shape as the reconcilers; no
// retries are attempted.
package dockerapi

import (
	"strings"

	"github.com/docker/docker/client"
	"github.com/rs/zerolog"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/logging"
)

// DefaultSocket is the engine's default unix socket
const DefaultSocket = "unix:///var/run/docker.sock"

// Client wraps the engine API client
type Client struct {
	api    client.APIClient
	logger zerolog.Logger
}

// NewClient connects to the engine at socket. An empty socket falls
// back to the environment (DOCKER_HOST and friends), a bare path is
// treated as a unix socket.
func NewClient(socket string) (*Client, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}

	if socket == "" {
		opts = append(opts, client.FromEnv)
	} else {
		opts = append(opts, client.WithHost(normalizeHost(socket)))
	}

	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDockerAPI, "could not create docker client")
	}

	return &Client{
		api:    api,
		logger: logging.GetLogger("dockerapi.client"),
	}, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.api.Close()
}

func normalizeHost(socket string) string {
	if strings.Contains(socket, "://") {
		return socket
	}
	return "unix://" + socket
}
