package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	config "github.com/mwantia/toolvault/internal/config/server"
	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
	"github.com/mwantia/toolvault/pkg/log"
	"github.com/mwantia/toolvault/pkg/storage"
	"github.com/mwantia/toolvault/pkg/vault"
)

type ToolVaultAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	metadata *store.SQLiteStore
	vault    *vault.Vault
}

func NewAgent(cfg *config.BaseServerConfig) *ToolVaultAgent {
	return &ToolVaultAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("toolvault", cfg.Log),
	}
}

func (tva *ToolVaultAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	tva.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](tva.sc,
		container.With[log.LoggerService](),
		container.WithInstance(tva.log)))

	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: tva.cfg.Metadata.SQLite.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}
	if err := metadata.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := metadata.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	tva.metadata = metadata

	tva.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](tva.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(metadata)))

	backend, err := storage.NewLocalBackend(tva.cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}

	tva.log.Debug("Registering 'Backend'...")
	errs.Add(container.Register[storage.LocalBackend](tva.sc,
		container.With[storage.Backend](),
		container.WithInstance(backend)))

	tva.vault = vault.New(metadata, backend, tva.log)

	tva.log.Debug("Registering 'Vault'...")
	errs.Add(container.Register[vault.Vault](tva.sc,
		container.WithInstance(tva.vault)))

	return errs.Errors()
}

// startIntake launches the intake watcher when intake routes are configured.
func (tva *ToolVaultAgent) startIntake(ctx context.Context) {
	if len(tva.cfg.Storage.Intake) == 0 {
		return
	}

	routes := make([]vault.IntakeRoute, 0, len(tva.cfg.Storage.Intake))
	for _, rc := range tva.cfg.Storage.Intake {
		routes = append(routes, vault.IntakeRoute{
			Path:    rc.Path,
			Line:    rc.Line,
			Machine: rc.Machine,
			DocType: models.DocType(strings.ToLower(rc.Type)),
		})
	}

	watcher := vault.NewIntakeWatcher(tva.vault, tva.log, routes)

	tva.wait.Add(1)
	go func() {
		defer tva.wait.Done()
		if err := watcher.Watch(ctx); err != nil {
			tva.log.Error("Intake watcher stopped: %v", err)
		}
	}()
}

func (tva *ToolVaultAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	tva.mutex.Lock()

	if err := tva.setupServices(ctx); err != nil {
		tva.mutex.Unlock()
		return err
	}

	tva.startIntake(ctx)

	tva.mutex.Unlock()
	<-ctx.Done()

	timeout, err := time.ParseDuration(tva.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := tva.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	tva.wait.Wait()

	if tva.metadata != nil {
		if err := tva.metadata.Close(); err != nil {
			return fmt.Errorf("failed to close metadata store: %w", err)
		}
	}

	return nil
}
