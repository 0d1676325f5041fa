package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/config"
	"github.com/at-ishikawa/quizdrill/internal/database"
	"github.com/at-ishikawa/quizdrill/internal/drill"
	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
)

// Drill is the drill service wired from the configuration.
type Drill struct {
	Service *drill.Service
	Catalog *question.Catalog
	DB      *database.DB
}

// Close closes the ledger connection.
func (d *Drill) Close() error {
	return d.DB.Close()
}

// OpenDrill opens the ledger store cfg selects and the question catalog.
// The store is not contacted until the first operation.
func OpenDrill(cfg *config.Config, logger *zap.Logger) (*Drill, error) {
	db, target, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if target.Fallback {
		logger.Info("no driver for the database url scheme, using the local sqlite file",
			zap.String("sqlite_path", cfg.Database.SQLitePath))
	}
	logger.Debug("ledger store selected", zap.String("dialect", target.Dialect.Name()))

	catalog := question.NewCatalog(cfg.Questions.Path, logger)
	service := drill.NewService(catalog, ledger.NewDBRepository(db.DB, db.Dialect), nil, logger)
	return &Drill{Service: service, Catalog: catalog, DB: db}, nil
}
