package lifecycle

import "context"

// Instance describes one store process known to the runtime.
type Instance struct {
	ID      string
	Name    string
	Running bool
	Ports   string
}

// RunSpec describes a new store process.
type RunSpec struct {
	Name       string
	Image      string
	HTTPPort   int
	GRPCPort   int
	StorageDir string
}

// ProcessController drives the runtime hosting the store process.
// Implementations honour ctx deadlines on every call.
type ProcessController interface {
	// IsAvailable checks that the runtime is installed and responding.
	IsAvailable(ctx context.Context) error

	// List returns instances whose name is exactly name. When all is false
	// only running instances are returned.
	List(ctx context.Context, name string, all bool) ([]Instance, error)

	// Start resumes a stopped instance.
	Start(ctx context.Context, name string) error

	// Run launches a new instance and returns its id.
	Run(ctx context.Context, spec RunSpec) (string, error)

	// Stop stops a running instance.
	Stop(ctx context.Context, name string) error

	// Inspect returns the instance with the given name.
	// Returns ErrInstanceNotFound when no such instance exists.
	Inspect(ctx context.Context, name string) (*Instance, error)
}
