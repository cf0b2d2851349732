// Package paths centralizes the on-disk layout of configuration
// fragments and scratch space.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// ComposeFragment is the location of a compose fragment for an entity
func ComposeFragment(baseDirectory, entityName string) string {
	return filepath.Join(baseDirectory, entityName+".conf")
}

// ContainerDir is the per-container directory under the base directory
func ContainerDir(baseDirectory, containerName string) string {
	return filepath.Join(baseDirectory, containerName)
}

// EnvironmentFile is the container's env file
func EnvironmentFile(baseDirectory, containerName string) string {
	return filepath.Join(baseDirectory, containerName, "container.env")
}

// PropertiesFile is the container's default properties file
func PropertiesFile(baseDirectory, containerName string) string {
	return filepath.Join(baseDirectory, containerName, containerName+".properties")
}

// ContainerFile is an arbitrary per-container file
func ContainerFile(baseDirectory, containerName, fileName string) string {
	return filepath.Join(baseDirectory, containerName, fileName)
}

// ChecksumSidecar is the legacy sidecar location for a fragment.
// Current reconciliation re-hashes both files instead; sidecars left
// behind by older tooling are removed on sight.
func ChecksumSidecar(target string) string {
	return target + ".checksum"
}

// ScratchDir returns a private scratch directory for one invocation
// of the named component. The pid plus a random suffix keeps
// concurrent invocations from colliding.
func ScratchDir(component string) string {
	return filepath.Join(scratchRoot(), fmt.Sprintf("%s.%d.%s", component, os.Getpid(), uuid.NewString()[:8]))
}

func scratchRoot() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, "confrag")
	}
	return filepath.Join(os.TempDir(), "confrag")
}
