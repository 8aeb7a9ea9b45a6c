// Package docker runs the local Neo4j instance that stores verified
// topologies.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"netgraphx/internal/config"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// ContainerName is the name of the Neo4j container managed by start/stop.
const ContainerName = "netgraphx-neo4j"

// DefaultDataDir is mounted as the Neo4j data volume.
const DefaultDataDir = "neo4j-data"

var exposedPorts = []string{"7474", "7687"}

// StartContainerOptions configures StartContainer.
type StartContainerOptions struct {
	Config  *config.Config
	DataDir string
	Out     io.Writer
}

// StartContainer pulls the Neo4j image if needed and starts the container in
// the background. An already running container is left alone.
func StartContainer(ctx context.Context, opts StartContainerOptions) error {
	if opts.Config == nil {
		return fmt.Errorf("no configuration given")
	}
	if opts.Config.Neo4j.Password == "" {
		return fmt.Errorf("neo4j password is not set; run 'netgraphx init' first")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	existing, err := findContainer(ctx, cli, ContainerName)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.State == "running" {
			fmt.Fprintf(out, "✓ Container %s is already running\n", ContainerName)
			return nil
		}
		fmt.Fprintf(out, "Starting existing container %s...\n", ContainerName)
		if err := cli.ContainerStart(ctx, existing.ID, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start container: %w", err)
		}
		fmt.Fprintf(out, "✓ Container %s started\n", ContainerName)
		return nil
	}

	imageRef := opts.Config.Neo4j.DockerImage
	if _, err := cli.ImageInspect(ctx, imageRef); err != nil {
		fmt.Fprintf(out, "Pulling image %s...\n", imageRef)
		reader, err := cli.ImagePull(ctx, imageRef, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
		}
		_, copyErr := io.Copy(io.Discard, reader)
		reader.Close()
		if copyErr != nil {
			return fmt.Errorf("failed to pull image %s: %w", imageRef, copyErr)
		}
	}

	exposed, bindings, err := portBindings(exposedPorts)
	if err != nil {
		return err
	}

	resp, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:        imageRef,
			Env:          neo4jEnv(opts.Config.Neo4j),
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
			Binds:        []string{absDataDir + ":/data"},
		},
		nil, nil, ContainerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	fmt.Fprintf(out, "✓ Container %s started\n", ContainerName)
	fmt.Fprintf(out, "  Browser: http://localhost:7474\n")
	fmt.Fprintf(out, "  Bolt:    %s\n", opts.Config.Neo4j.URI)
	fmt.Fprintf(out, "  Data:    %s\n", absDataDir)
	return nil
}

// StopContainer stops and removes the Neo4j container. The data directory
// is kept.
func StopContainer(ctx context.Context, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	existing, err := findContainer(ctx, cli, ContainerName)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("container %s not found", ContainerName)
	}

	fmt.Fprintf(out, "Stopping container %s...\n", ContainerName)
	timeout := 10 // seconds
	if err := cli.ContainerStop(ctx, existing.ID, container.StopOptions{Timeout: &timeout}); err != nil {
		// Container might already be stopped, try to remove anyway
		fmt.Fprintf(out, "Warning: failed to stop container: %v\n", err)
	} else {
		fmt.Fprintf(out, "✓ Container stopped\n")
	}

	fmt.Fprintf(out, "Removing container %s...\n", ContainerName)
	if err := cli.ContainerRemove(ctx, existing.ID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}

	fmt.Fprintf(out, "✓ Container %s removed successfully\n", ContainerName)
	return nil
}

func findContainer(ctx context.Context, cli *client.Client, name string) (*container.Summary, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	for i := range containers {
		for _, n := range containers[i].Names {
			if n == "/"+name {
				return &containers[i], nil
			}
		}
	}
	return nil, nil
}

// portBindings publishes each TCP port on the same host port.
func portBindings(ports []string) (nat.PortSet, nat.PortMap, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, p := range ports {
		port, err := nat.NewPort("tcp", p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port %q: %w", p, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: p}}
	}
	return exposed, bindings, nil
}

func neo4jEnv(cfg config.Neo4jConfig) []string {
	return []string{
		fmt.Sprintf("NEO4J_AUTH=%s/%s", cfg.User, cfg.Password),
	}
}
