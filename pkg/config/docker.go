package config

import (
	"os"
	"sync"
)

// dockerEnvFile exists in every Docker container.
var dockerEnvFile = "/.dockerenv"

var (
	inContainerOnce sync.Once
	inContainer     bool
)

// IsRunningInDocker reports whether the process runs inside a Docker container.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	inContainerOnce.Do(func() {
		_, err := os.Stat(dockerEnvFile)
		inContainer = err == nil
	})
	return inContainer
}

// ResolveHostForDocker maps a loopback database host to host.docker.internal
// when running in Docker, so a containerised report run can reach a rental
// database published on the host. Any other host is returned unchanged.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, dockerized bool) string {
	if !dockerized {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	default:
		return host
	}
}
