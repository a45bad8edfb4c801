package repository

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInvalid   = errors.New("invalid record")
	ErrPersist   = errors.New("failed to persist records")

	// ErrUnchanged may be returned from a Modify callback to skip the write.
	ErrUnchanged = errors.New("record unchanged")
)

// Repository is the contract every file-backed entity store fulfils.
// Entities go in and come out by value; callers never hold references into the store.
type Repository[T any] interface {
	GetAll() ([]T, error)
	// FindByID returns nil, nil when no record has the id.
	FindByID(id string) (*T, error)
	Exists(id string) (bool, error)
	Count() (int, error)

	Add(e T) error
	Update(e T) error
	// Modify applies fn to a copy of the record and stores the result, all under one lock.
	Modify(id string, fn func(*T) error) error
	Remove(id string) error
	Clear() error

	Load() error
	Save() error
	SetFilePath(path string)
	FilePath() string
	EntityName() string
	LastLoad() LoadStats
}

// Sequenced is implemented by repositories whose IDs are prefix + number.
type Sequenced[T any] interface {
	NextID() (string, error)
	// Create assigns the next ID to e and adds it atomically.
	Create(e *T) error
}

// LoadStats describes the most recent read of the backing file.
type LoadStats struct {
	Records int
	Dropped int
}
