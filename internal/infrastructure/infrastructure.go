// Package infrastructure assembles the shared systems every module needs:
// lifecycle coordination, logging, the database, and blob storage.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/pkg/database"
	"github.com/JaimeStill/warden/pkg/lifecycle"
	"github.com/JaimeStill/warden/pkg/storage"
)

// EnvLogLevel selects the slog level: debug, info, warn, or error.
const EnvLogLevel = "WARDEN_LOG_LEVEL"

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// Systems are initialized but not started; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}, nil
}

// NewLogger returns a text logger writing to w at the WARDEN_LOG_LEVEL level.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(os.Getenv(EnvLogLevel))}))
}

// Start registers database and storage hooks with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

func level(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
