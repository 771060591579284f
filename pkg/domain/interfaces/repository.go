package interfaces

// Repository defines the interface for canonical data persistence
type Repository interface {
	Project() ProjectRepository

	Close() error
}
