package dockerapi

import (
	"context"

	"github.com/confrag/confrag/pkg/errors"
)

// VersionInfo is the answer to a daemon version query
type VersionInfo struct {
	DockerVersion string `json:"docker_version"`
	APIVersion    string `json:"api_version"`
}

// Version pings the daemon and reports its version. An unreachable
// daemon yields ErrDockerUnreachable so callers can tell "no running
// docker" apart from API failures.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	if _, err := c.api.Ping(ctx); err != nil {
		return VersionInfo{}, errors.Wrap(err, errors.ErrDockerUnreachable, "no running docker found")
	}

	v, err := c.api.ServerVersion(ctx)
	if err != nil {
		return VersionInfo{}, errors.Wrap(err, errors.ErrDockerAPI, "could not query docker version")
	}

	return VersionInfo{
		DockerVersion: v.Version,
		APIVersion:    v.APIVersion,
	}, nil
}
