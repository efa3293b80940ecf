// Package backend builds the repository, publisher and mirror selected by
// configuration.
package backend

import (
	"context"
	"errors"

	"pixnox/internal/sheets"
	"pixnox/internal/storage"
)

var ErrUnknownBackend = errors.New("unknown backend")

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the repository and its cleanup function
type BackendResult struct {
	Repository storage.Repository
	Cleanup    CleanupFunc
}

// MirrorResult contains the selected mirror and a short name for logs.
type MirrorResult struct {
	Mirror sheets.ExpenseMirror
	Kind   string
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the repository named by config.Type
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the Google Sheets mirror when configured, else memory
	CreateMirror(ctx context.Context, config Config) (*MirrorResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// memory seeds nothing; blob stores one file per key under DataDirectory
	DataDirectory string
	StorageKey    string

	SQLiteDBPath string
	DatabaseURL  string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	BlobBackend     BackendType = "blob"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, BlobBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
