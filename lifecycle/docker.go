// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/poiesic/vaultindex/core"
)

// Runner executes a command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		err = fmt.Errorf("%s: %w", err, ctxErr)
	}
	return stdout.String(), stderr.String(), err
}

// DockerController implements ProcessController over the docker CLI.
type DockerController struct {
	binary string
	runner Runner
}

var _ ProcessController = (*DockerController)(nil)

// DockerOption configures a DockerController.
type DockerOption func(*DockerController)

// WithBinary overrides the docker executable.
func WithBinary(binary string) DockerOption {
	return func(d *DockerController) {
		d.binary = binary
	}
}

// WithRunner replaces the command runner.
func WithRunner(runner Runner) DockerOption {
	return func(d *DockerController) {
		d.runner = runner
	}
}

// NewDockerController creates a controller that shells out to docker.
func NewDockerController(opts ...DockerOption) *DockerController {
	d := &DockerController{binary: "docker", runner: execRunner{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

const psFormat = "{{.ID}}\t{{.Names}}\t{{.State}}\t{{.Ports}}"

func (d *DockerController) IsAvailable(ctx context.Context) error {
	_, _, err := d.run(ctx, "--version")
	return err
}

func (d *DockerController) List(ctx context.Context, name string, all bool) ([]Instance, error) {
	args := []string{"ps"}
	if all {
		args = append(args, "-a")
	}
	args = append(args, "--filter", "name="+name, "--format", psFormat)
	stdout, _, err := d.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parsePS(stdout, name), nil
}

func (d *DockerController) Start(ctx context.Context, name string) error {
	_, _, err := d.run(ctx, "start", name)
	return err
}

func (d *DockerController) Run(ctx context.Context, spec RunSpec) (string, error) {
	stdout, _, err := d.run(ctx, runArgs(spec)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

func (d *DockerController) Stop(ctx context.Context, name string) error {
	_, _, err := d.run(ctx, "stop", name)
	return err
}

func (d *DockerController) Inspect(ctx context.Context, name string) (*Instance, error) {
	stdout, stderr, err := d.run(ctx, "inspect", "--format", "{{.Id}}\t{{.Name}}\t{{.State.Running}}", name)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr), "no such") {
			return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
		}
		return nil, err
	}
	return parseInspect(stdout)
}

// run executes docker and classifies failures.
func (d *DockerController) run(ctx context.Context, args ...string) (string, string, error) {
	stdout, stderr, err := d.runner.Run(ctx, d.binary, args...)
	if err == nil {
		return stdout, stderr, nil
	}
	return stdout, stderr, classify(args, stderr, err)
}

func classify(args []string, stderr string, err error) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	}
	lower := strings.ToLower(msg)
	command := "docker " + args[0]
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", core.ErrRuntimeUnavailable, command, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", command, context.DeadlineExceeded)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", command, context.Canceled)
	case strings.Contains(lower, "port is already allocated"), strings.Contains(lower, "address already in use"):
		return fmt.Errorf("%w: %s", core.ErrPortConflict, msg)
	case strings.Contains(lower, "is already in use"):
		return fmt.Errorf("%w: %s", ErrNameInUse, msg)
	case strings.Contains(lower, "cannot connect to the docker daemon"):
		return fmt.Errorf("%w: %s", core.ErrRuntimeUnavailable, msg)
	default:
		return fmt.Errorf("%s: %s", command, msg)
	}
}

func runArgs(spec RunSpec) []string {
	return []string{
		"run", "-d",
		"--name", spec.Name,
		"-p", strconv.Itoa(spec.HTTPPort) + ":6333",
		"-p", strconv.Itoa(spec.GRPCPort) + ":6334",
		"-v", spec.StorageDir + ":/qdrant/storage:z",
		spec.Image,
	}
}

// parsePS reads `docker ps` output in psFormat. The name filter matches
// substrings, so rows are kept only when the name is exact.
func parsePS(out, name string) []Instance {
	var instances []Instance
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 3 || fields[1] != name {
			continue
		}
		inst := Instance{
			ID:      fields[0],
			Name:    fields[1],
			Running: strings.EqualFold(fields[2], "running"),
		}
		if len(fields) == 4 {
			inst.Ports = fields[3]
		}
		instances = append(instances, inst)
	}
	return instances
}

func parseInspect(out string) (*Instance, error) {
	fields := strings.Split(strings.TrimSpace(out), "\t")
	if len(fields) != 3 {
		return nil, fmt.Errorf("unexpected docker inspect output %q", strings.TrimSpace(out))
	}
	running, err := strconv.ParseBool(fields[2])
	if err != nil {
		return nil, fmt.Errorf("unexpected running state %q: %w", fields[2], err)
	}
	return &Instance{
		ID:      fields[0],
		Name:    strings.TrimPrefix(fields[1], "/"),
		Running: running,
	}, nil
}
