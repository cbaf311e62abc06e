package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/pkgstash/internal/backup"
	"github.com/blackwell-systems/pkgstash/internal/bookmarks"
	"github.com/blackwell-systems/pkgstash/internal/config"
	"github.com/blackwell-systems/pkgstash/internal/logging"
	"github.com/blackwell-systems/pkgstash/internal/output"
	"github.com/blackwell-systems/pkgstash/internal/pm"
	"github.com/blackwell-systems/pkgstash/internal/repo"
	"github.com/blackwell-systems/pkgstash/internal/store"
)

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deps is everything a command needs, wired from the configuration.
type deps struct {
	cfg       *config.Config
	log       *logging.Logger
	store     *store.Store
	registry  *repo.Registry
	bookmarks *bookmarks.Store
	engine    *backup.Engine
}

// openDeps opens the state database and builds the backup engine over the
// configured package backend.
func openDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	d := &deps{
		cfg:       cfg,
		log:       log,
		store:     st,
		registry:  repo.NewRegistry(st, cfg.Naming()),
		bookmarks: bookmarks.New(st),
	}

	var (
		transactor pm.Transactor
		inventory  backup.Inventory
	)
	switch cfg.Backend {
	case config.BackendPkcon:
		p := pm.NewPkcon(cfg.Pkcon)
		transactor, inventory = p, p
	default:
		l := pm.NewLocal(st)
		transactor, inventory = l, l
	}
	log.Debugw("opened state", "db", cfg.DBPath, "backend", cfg.Backend)

	d.engine = backup.New(d.registry, inventory, d.bookmarks, transactor,
		backup.WithNaming(cfg.Naming()),
		backup.WithLogger(log))
	return d, nil
}

// Close releases the database and flushes the logger.
func (d *deps) Close() {
	d.log.Sync()
	d.store.Close()
}

// outcome is how a backup or restore ended.
type outcome struct {
	final      backup.Event
	restoreErr error // set when a restore could not read its file
}

// follow subscribes to the engine and returns a function that blocks until
// the running operation ends, keeping spinner in step with the status.
// It must be called before the operation starts.
func (d *deps) follow(spinner *output.Spinner) func() outcome {
	events := make(chan backup.Event, 64)
	d.engine.Subscribe(func(ev backup.Event) { events <- ev })

	return func() outcome {
		var out outcome
		for ev := range events {
			switch ev.Kind {
			case backup.StatusChanged:
				if ev.Status != backup.Idle && spinner != nil {
					spinner.UpdateMessage(statusMessage(ev.Status))
				}
			case backup.RestoreFailed:
				out.restoreErr = ev.Err
			case backup.BackedUp, backup.BackupFailed, backup.Restored:
				out.final = ev
				return out
			}
		}
		return out
	}
}

func statusMessage(s backup.Status) string {
	switch s {
	case backup.BackingUp:
		return "Backing up"
	case backup.RestoringBookmarks:
		return "Restoring bookmarks"
	case backup.RestoringRepos:
		return "Restoring repositories"
	case backup.RefreshingRepos:
		return "Refreshing repositories"
	case backup.SearchingPackages:
		return "Searching packages"
	case backup.InstallingPackages:
		return "Installing packages"
	default:
		return "Working"
	}
}
