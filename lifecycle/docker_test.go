package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/poiesic/vaultindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error
	args   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.args = append(f.args, append([]string{name}, args...))
	return f.stdout, f.stderr, f.err
}

func TestDockerController_List(t *testing.T) {
	runner := &fakeRunner{stdout: strings.Join([]string{
		"abc123\tobsistant-qdrant-1234abcd\trunning\t0.0.0.0:6333->6333/tcp",
		"def456\tobsistant-qdrant-1234abcd-old\texited\t",
		"",
	}, "\n")}
	d := NewDockerController(WithRunner(runner))

	instances, err := d.List(context.Background(), "obsistant-qdrant-1234abcd", true)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, Instance{
		ID:      "abc123",
		Name:    "obsistant-qdrant-1234abcd",
		Running: true,
		Ports:   "0.0.0.0:6333->6333/tcp",
	}, instances[0])

	assert.Equal(t, []string{"docker", "ps", "-a", "--filter", "name=obsistant-qdrant-1234abcd", "--format", psFormat}, runner.args[0])
}

func TestDockerController_ListRunningOnly(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDockerController(WithRunner(runner), WithBinary("podman"))

	instances, err := d.List(context.Background(), "x", false)
	require.NoError(t, err)
	assert.Empty(t, instances)
	assert.Equal(t, []string{"podman", "ps", "--filter", "name=x", "--format", psFormat}, runner.args[0])
}

func TestDockerController_Run(t *testing.T) {
	runner := &fakeRunner{stdout: "f00dcafe\n"}
	d := NewDockerController(WithRunner(runner))

	id, err := d.Run(context.Background(), RunSpec{
		Name:       "obsistant-qdrant-1234abcd",
		Image:      "qdrant/qdrant",
		HTTPPort:   6333,
		GRPCPort:   6334,
		StorageDir: "/vault/.obsistant/qdrant_storage",
	})
	require.NoError(t, err)
	assert.Equal(t, "f00dcafe", id)
	assert.Equal(t, []string{
		"docker", "run", "-d",
		"--name", "obsistant-qdrant-1234abcd",
		"-p", "6333:6333",
		"-p", "6334:6334",
		"-v", "/vault/.obsistant/qdrant_storage:/qdrant/storage:z",
		"qdrant/qdrant",
	}, runner.args[0])
}

func TestDockerController_Inspect(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		d := NewDockerController(WithRunner(&fakeRunner{stdout: "sha256abc\t/obsistant-qdrant-1\ttrue\n"}))
		inst, err := d.Inspect(context.Background(), "obsistant-qdrant-1")
		require.NoError(t, err)
		assert.Equal(t, &Instance{ID: "sha256abc", Name: "obsistant-qdrant-1", Running: true}, inst)
	})

	t.Run("missing", func(t *testing.T) {
		d := NewDockerController(WithRunner(&fakeRunner{
			stderr: "Error: No such object: obsistant-qdrant-1",
			err:    errors.New("exit status 1"),
		}))
		_, err := d.Inspect(context.Background(), "obsistant-qdrant-1")
		assert.ErrorIs(t, err, ErrInstanceNotFound)
	})

	t.Run("garbage", func(t *testing.T) {
		d := NewDockerController(WithRunner(&fakeRunner{stdout: "nonsense"}))
		_, err := d.Inspect(context.Background(), "x")
		assert.Error(t, err)
	})
}

func TestClassify(t *testing.T) {
	exit := errors.New("exit status 125")
	tests := []struct {
		name   string
		stderr string
		err    error
		want   error
	}{
		{"port allocated", "Bind for 0.0.0.0:6333 failed: port is already allocated", exit, core.ErrPortConflict},
		{"address in use", "listen tcp 0.0.0.0:6334: bind: address already in use", exit, core.ErrPortConflict},
		{"name in use", `Conflict. The container name "/obsistant-qdrant-1" is already in use by container "abc".`, exit, ErrNameInUse},
		{"binary missing", "", &exec.Error{Name: "docker", Err: exec.ErrNotFound}, core.ErrRuntimeUnavailable},
		{"daemon down", "Cannot connect to the Docker daemon at unix:///var/run/docker.sock.", exit, core.ErrRuntimeUnavailable},
		{"deadline", "", fmt.Errorf("signal: killed: %w", context.DeadlineExceeded), context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify([]string{"run"}, tt.stderr, tt.err), tt.want)
		})
	}

	err := classify([]string{"stop"}, "boom", exit)
	assert.EqualError(t, err, "docker stop: boom")
}

func TestDockerController_IsAvailable(t *testing.T) {
	runner := &fakeRunner{stdout: "Docker version 27.0.3"}
	require.NoError(t, NewDockerController(WithRunner(runner)).IsAvailable(context.Background()))
	assert.Equal(t, []string{"docker", "--version"}, runner.args[0])

	missing := &fakeRunner{err: &exec.Error{Name: "docker", Err: exec.ErrNotFound}}
	err := NewDockerController(WithRunner(missing)).IsAvailable(context.Background())
	assert.ErrorIs(t, err, core.ErrRuntimeUnavailable)
}
