package types

// OperationType defines the type of file system operation
type OperationType string

const (
	// OperationCreateDir creates a directory and missing ancestors
	OperationCreateDir OperationType = "create_dir"

	// OperationInstallFile copies a source file to its destination
	OperationInstallFile OperationType = "install_file"

	// OperationCreateSymlink creates a symbolic link, replacing whatever
	// currently occupies the link path
	OperationCreateSymlink OperationType = "create_symlink"
)

// OperationStatus defines the state of an operation after execution
type OperationStatus string

const (
	// StatusReady means the operation has not been executed yet
	StatusReady OperationStatus = "ready"
	// StatusDone means the operation was applied
	StatusDone OperationStatus = "done"
	// StatusSkipped means the operation required no change (e.g. a
	// symlink already pointing at its target, or a dry run)
	StatusSkipped OperationStatus = "skipped"
	// StatusError means the operation failed
	StatusError OperationStatus = "error"
)

// Operation represents a low-level filesystem step compiled from a
// directive. Operations for one file execute in slice order: directories
// first, then file placement, then symlinks.
type Operation struct {
	// Type is the kind of operation
	Type OperationType

	// Source is the source path (for installs) or link target (for
	// symlinks)
	Source string

	// Target is the path being created or written
	Target string

	// Description is a human-readable summary for verbose output
	Description string
}

// OperationResult pairs an operation with its execution outcome
type OperationResult struct {
	Operation Operation
	Status    OperationStatus
	Err       error
}
