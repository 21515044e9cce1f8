package runtime

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ContainerRuntime is the container backend used by the session manager.
// It is constructed once and injected; fakes stand in for tests.
type ContainerRuntime interface {
	// PullImage fetches an image from the registry.
	PullImage(ctx context.Context, image string) error

	// LaunchWorkspace starts a detached, self-removing workspace container.
	LaunchWorkspace(ctx context.Context, params LaunchParams) error

	// StopContainer stops a container by name. A container that is already
	// gone counts as success.
	StopContainer(ctx context.Context, name string) error

	// ExecInContainer runs a command inside a running container and returns
	// combined output and the exit code.
	ExecInContainer(ctx context.Context, name string, cmd []string) (string, int, error)

	// WaitRunning polls until the container reports a running state or the
	// timeout elapses.
	WaitRunning(ctx context.Context, name string, timeout time.Duration) bool
}

type LaunchParams struct {
	Name         string
	Image        string
	Network      string
	InternalPort int
	Labels       map[string]string
}

// RoutingLabels builds the opaque label set the external proxy uses to
// expose a workspace at https://<name>.<domain>. The session core attaches
// these verbatim and never interprets them.
func RoutingLabels(name, domain, network string, port int) map[string]string {
	return map[string]string{
		"traefik.enable":          "true",
		"traefik.docker.network":  network,
		fmt.Sprintf("traefik.http.routers.%s.rule", name):                        fmt.Sprintf("Host(`%s.%s`)", name, domain),
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", name):                 "websecure",
		fmt.Sprintf("traefik.http.routers.%s.tls", name):                         "true",
		fmt.Sprintf("traefik.http.routers.%s.middlewares", name):                 "user-headers",
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.scheme", name): "https",
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", name):   strconv.Itoa(port),
	}
}
