package runtime

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"
)

const labelManagedBy = "workspaces-api"

// DockerRuntime drives a local Docker daemon.
type DockerRuntime struct {
	client *dockerclient.Client
}

// NewDockerRuntime connects to the Docker daemon and verifies it responds.
func NewDockerRuntime(ctx context.Context, host string) (*DockerRuntime, error) {
	opts := []dockerclient.Opt{
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, dockerclient.WithHost(host))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker ping: %w", err)
	}

	log.Println("Docker daemon connected")
	return &DockerRuntime{client: cli}, nil
}

func (d *DockerRuntime) PullImage(ctx context.Context, img string) error {
	reader, err := d.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", img, err)
	}
	defer reader.Close()
	io.Copy(io.Discard, reader)
	return nil
}

func (d *DockerRuntime) LaunchWorkspace(ctx context.Context, params LaunchParams) error {
	port, err := nat.NewPort("tcp", strconv.Itoa(params.InternalPort))
	if err != nil {
		return fmt.Errorf("desktop port: %w", err)
	}

	labels := map[string]string{"managed-by": labelManagedBy}
	for k, v := range params.Labels {
		labels[k] = v
	}

	shmSize, _ := units.RAMInBytes("2g")

	containerCfg := &container.Config{
		Image:        params.Image,
		Labels:       labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}

	hostCfg := &container.HostConfig{
		AutoRemove: true,
		ShmSize:    shmSize,
		PortBindings: nat.PortMap{
			// Empty HostPort lets the daemon pick an ephemeral port.
			port: []nat.PortBinding{{}},
		},
	}

	netCfg := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			params.Network: {},
		},
	}

	resp, err := d.client.ContainerCreate(ctx, containerCfg, hostCfg, netCfg, nil, params.Name)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

func (d *DockerRuntime) StopContainer(ctx context.Context, name string) error {
	timeout := 30
	err := d.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout})
	if err != nil && !dockerclient.IsErrNotFound(err) {
		return fmt.Errorf("stop container %s: %w", name, err)
	}
	return nil
}

func (d *DockerRuntime) WaitRunning(ctx context.Context, name string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		inspect, err := d.client.ContainerInspect(ctx, name)
		if err == nil && inspect.State != nil && inspect.State.Status == "running" {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}
	return false
}

func (d *DockerRuntime) ExecInContainer(ctx context.Context, name string, cmd []string) (string, int, error) {
	execCfg := container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := d.client.ContainerExecCreate(ctx, name, execCfg)
	if err != nil {
		return "", -1, fmt.Errorf("exec create: %w", err)
	}

	resp, err := d.client.ContainerExecAttach(ctx, execID.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", -1, fmt.Errorf("exec attach: %w", err)
	}
	defer resp.Close()

	output, err := io.ReadAll(resp.Reader)
	if err != nil {
		return "", -1, fmt.Errorf("read exec output: %w", err)
	}

	inspectResp, err := d.client.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return stripLogHeaders(output), -1, fmt.Errorf("exec inspect: %w", err)
	}

	return stripLogHeaders(output), inspectResp.ExitCode, nil
}

// stripLogHeaders removes Docker's multiplexed stream framing:
// [stream_type(1)][0(3)][size(4)][payload].
func stripLogHeaders(data []byte) string {
	var result strings.Builder
	for len(data) > 0 {
		if len(data) >= 8 && (data[0] == 0 || data[0] == 1 || data[0] == 2) {
			size := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
			data = data[8:]
			if size > 0 && size <= len(data) {
				result.Write(data[:size])
				data = data[size:]
			} else {
				result.Write(data)
				break
			}
		} else {
			result.Write(data)
			break
		}
	}
	return result.String()
}

var _ ContainerRuntime = (*DockerRuntime)(nil)
