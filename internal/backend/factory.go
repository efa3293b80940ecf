package backend

import (
	"context"
	"fmt"

	"pixnox/internal/amqp"
	"pixnox/internal/log"
	"pixnox/internal/services"
	gsheet "pixnox/internal/sheets/google"
	"pixnox/internal/sheets/memory"
	"pixnox/internal/storage"
	"pixnox/internal/storage/blob"
	memstore "pixnox/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return &BackendResult{Repository: memstore.New(), Cleanup: noCleanup}, nil
	case BlobBackend:
		return f.createBlobBackend(ctx, config)
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &BackendResult{Repository: repo, Cleanup: repo.Close}, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres backend")
		return &BackendResult{Repository: repo, Cleanup: repo.Close}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Type)
	}
}

func (f *DefaultFactory) createBlobBackend(ctx context.Context, config Config) (*BackendResult, error) {
	kv, err := blob.NewFileKV(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	key := config.StorageKey
	if key == "" {
		key = blob.DefaultKey
	}
	f.logger.InfoContext(ctx, "Initialized blob backend",
		"data_directory", config.DataDirectory,
		"key", key)
	return &BackendResult{Repository: blob.New(kv, key, f.logger.Logger), Cleanup: noCleanup}, nil
}

// CreatePublisher dials the broker when AMQP is configured. It returns a nil
// publisher, not an error, when the broker is unreachable so mutations keep
// working without events.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (services.EventPublisher, CleanupFunc) {
	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP not configured, events disabled")
		return nil, noCleanup
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil, noCleanup
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, client.Close
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.WarnContext(ctx, "No spreadsheet configured, mirroring in memory")
		return &MirrorResult{Mirror: memory.New(), Kind: "memory"}, nil
	}
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
	return &MirrorResult{Mirror: cli, Kind: "google"}, nil
}

func noCleanup() error { return nil }
