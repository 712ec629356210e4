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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/poiesic/vaultindex/core"
)

const (
	// DefaultImage is the store's container image.
	DefaultImage = "qdrant/qdrant"

	// DefaultQueryTimeout bounds availability, list and inspect calls.
	DefaultQueryTimeout = 5 * time.Second

	// DefaultControlTimeout bounds start, resume and stop calls.
	DefaultControlTimeout = 30 * time.Second
)

// Ports is the host port pair a store instance is bound to.
type Ports struct {
	HTTP int
	GRPC int
}

// DefaultPorts returns the store's standard ports.
func DefaultPorts() Ports {
	return Ports{HTTP: 6333, GRPC: 6334}
}

// Status reports the state of a vault's store instance.
type Status struct {
	Identity core.StoreIdentity
	Exists   bool
	Running  bool
	ID       string
	Ports    string
}

// PortProbe reports whether a host port is already bound.
type PortProbe func(port int) bool

// Manager starts, stops and reports on the store process bound to a vault.
type Manager struct {
	controller     ProcessController
	image          string
	probe          PortProbe
	queryTimeout   time.Duration
	controlTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithImage sets the image launched for new instances.
func WithImage(image string) Option {
	return func(m *Manager) error {
		if image == "" {
			return errors.New("image cannot be empty")
		}
		m.image = image
		return nil
	}
}

// WithPortProbe replaces the port conflict check.
func WithPortProbe(probe PortProbe) Option {
	return func(m *Manager) error {
		if probe == nil {
			return errors.New("port probe cannot be nil")
		}
		m.probe = probe
		return nil
	}
}

// WithTimeouts sets the query and control time boxes.
func WithTimeouts(query, control time.Duration) Option {
	return func(m *Manager) error {
		if query <= 0 || control <= 0 {
			return errors.New("timeouts must be positive")
		}
		m.queryTimeout = query
		m.controlTimeout = control
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		m.logger = logger.With("component", "lifecycle")
		return nil
	}
}

// NewManager creates a lifecycle manager over controller.
func NewManager(controller ProcessController, opts ...Option) (*Manager, error) {
	if controller == nil {
		return nil, ErrControllerRequired
	}
	m := &Manager{
		controller:     controller,
		image:          DefaultImage,
		probe:          PortInUse,
		queryTimeout:   DefaultQueryTimeout,
		controlTimeout: DefaultControlTimeout,
		logger:         slog.Default().With("component", "lifecycle"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// PortInUse reports whether port cannot be bound on the loopback interface.
func PortInUse(port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return true
	}
	listener.Close()
	return false
}

// EnsureStorage creates the vault's store data directory. Idempotent.
func EnsureStorage(vault string) (string, error) {
	identity, err := core.IdentityFor(vault)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(identity.StorageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory %s: %w", identity.StorageDir, err)
	}
	return identity.StorageDir, nil
}

// IsRunning reports whether the instance for identity is running.
func (m *Manager) IsRunning(ctx context.Context, identity core.StoreIdentity) (bool, error) {
	inst, err := m.find(ctx, "status", identity.Name, false)
	if err != nil {
		return false, err
	}
	return inst != nil, nil
}

// Running is IsRunning keyed by vault path.
func (m *Manager) Running(ctx context.Context, vault string) (bool, error) {
	identity, err := core.IdentityFor(vault)
	if err != nil {
		return false, err
	}
	return m.IsRunning(ctx, identity)
}

// Start ensures the vault's store instance is running and returns its id.
// A running instance is left alone and a stopped one is resumed; otherwise a
// new instance is launched on ports.
func (m *Manager) Start(ctx context.Context, vault string, ports Ports) (string, error) {
	const op = "start"
	if err := m.available(ctx, op); err != nil {
		return "", err
	}
	identity, err := core.IdentityFor(vault)
	if err != nil {
		return "", err
	}
	logger := m.logger.With("name", identity.Name)

	inst, err := m.find(ctx, op, identity.Name, true)
	if err != nil {
		return "", err
	}
	if inst != nil && inst.Running {
		logger.Info("store already running", "id", inst.ID)
		return inst.ID, nil
	}
	if inst != nil {
		logger.Info("resuming stopped store")
		return m.resume(ctx, identity.Name)
	}

	storageDir, err := EnsureStorage(identity.VaultPath)
	if err != nil {
		return "", &core.StoreControlError{Op: op, Kind: core.ErrControlFailed, Err: err}
	}
	for _, port := range []int{ports.HTTP, ports.GRPC} {
		if m.probe(port) {
			return "", &core.StoreControlError{Op: op, Kind: core.ErrPortConflict, Err: fmt.Errorf("port %d", port)}
		}
	}

	spec := RunSpec{
		Name:       identity.Name,
		Image:      m.image,
		HTTPPort:   ports.HTTP,
		GRPCPort:   ports.GRPC,
		StorageDir: storageDir,
	}
	logger.Info("launching store", "http_port", ports.HTTP, "grpc_port", ports.GRPC, "storage", storageDir)

	var id string
	err = m.call(ctx, m.controlTimeout, func(ctx context.Context) error {
		var err error
		id, err = m.controller.Run(ctx, spec)
		return err
	})
	if errors.Is(err, ErrNameInUse) {
		logger.Info("store name already in use, resuming")
		return m.resume(ctx, identity.Name)
	}
	if errors.Is(err, core.ErrPortConflict) {
		return "", &core.StoreControlError{Op: op, Kind: core.ErrPortConflict,
			Err: fmt.Errorf("port %d or %d: %w", ports.HTTP, ports.GRPC, err)}
	}
	if err != nil {
		return "", m.controlError(op, err)
	}
	logger.Info("store started", "id", id, "dashboard", fmt.Sprintf("http://localhost:%d/dashboard", ports.HTTP))
	return id, nil
}

// Stop stops the vault's store instance. Returns false when it was not running.
func (m *Manager) Stop(ctx context.Context, vault string) (bool, error) {
	const op = "stop"
	if err := m.available(ctx, op); err != nil {
		return false, err
	}
	identity, err := core.IdentityFor(vault)
	if err != nil {
		return false, err
	}
	inst, err := m.find(ctx, op, identity.Name, false)
	if err != nil {
		return false, err
	}
	if inst == nil {
		m.logger.Info("store is not running", "name", identity.Name)
		return false, nil
	}
	err = m.call(ctx, m.controlTimeout, func(ctx context.Context) error {
		return m.controller.Stop(ctx, identity.Name)
	})
	if err != nil {
		return false, m.controlError(op, err)
	}
	m.logger.Info("store stopped", "name", identity.Name)
	return true, nil
}

// Status reports whether the vault's store instance exists and is running.
func (m *Manager) Status(ctx context.Context, vault string) (Status, error) {
	const op = "status"
	if err := m.available(ctx, op); err != nil {
		return Status{}, err
	}
	identity, err := core.IdentityFor(vault)
	if err != nil {
		return Status{}, err
	}
	status := Status{Identity: identity}
	inst, err := m.find(ctx, op, identity.Name, true)
	if err != nil {
		return status, err
	}
	if inst != nil {
		status.Exists = true
		status.Running = inst.Running
		status.ID = inst.ID
		status.Ports = inst.Ports
	}
	return status, nil
}

func (m *Manager) resume(ctx context.Context, name string) (string, error) {
	const op = "resume"
	err := m.call(ctx, m.controlTimeout, func(ctx context.Context) error {
		return m.controller.Start(ctx, name)
	})
	if err != nil {
		return "", m.controlError(op, err)
	}
	var inst *Instance
	err = m.call(ctx, m.queryTimeout, func(ctx context.Context) error {
		var err error
		inst, err = m.controller.Inspect(ctx, name)
		return err
	})
	if err != nil {
		return "", m.controlError(op, err)
	}
	m.logger.Info("store resumed", "name", name, "id", inst.ID)
	return inst.ID, nil
}

func (m *Manager) available(ctx context.Context, op string) error {
	err := m.call(ctx, m.queryTimeout, m.controller.IsAvailable)
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrControlTimeout) {
		return &core.StoreControlError{Op: op, Kind: core.ErrControlTimeout, Err: err}
	}
	return &core.StoreControlError{Op: op, Kind: core.ErrRuntimeUnavailable, Err: err}
}

// find returns the instance named name, or nil when there is none.
func (m *Manager) find(ctx context.Context, op, name string, all bool) (*Instance, error) {
	var instances []Instance
	err := m.call(ctx, m.queryTimeout, func(ctx context.Context) error {
		var err error
		instances, err = m.controller.List(ctx, name, all)
		return err
	})
	if err != nil {
		return nil, m.controlError(op, err)
	}
	for i := range instances {
		if instances[i].Name == name {
			return &instances[i], nil
		}
	}
	return nil, nil
}

// call runs fn under a time box. A deadline hit inside the box becomes ErrControlTimeout.
func (m *Manager) call(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	boxed, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := fn(boxed)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(boxed.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w after %s: %w", core.ErrControlTimeout, timeout, err)
	}
	return err
}

func (m *Manager) controlError(op string, err error) error {
	var sce *core.StoreControlError
	if errors.As(err, &sce) {
		return err
	}
	kind := core.ErrControlFailed
	for _, k := range []error{core.ErrControlTimeout, core.ErrPortConflict, core.ErrRuntimeUnavailable} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return &core.StoreControlError{Op: op, Kind: kind, Err: err}
}
