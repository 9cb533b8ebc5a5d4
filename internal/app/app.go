// Package app is the composition root of the repair bot: it wires the
// catalog, session store, order ledger, and dialog engine to the shared
// Telegram core.
package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"repairbot/core/bootstrap"
	coredatabase "repairbot/core/database"
	"repairbot/core/logger"
	coretelegram "repairbot/core/telegram"
	"repairbot/core/telegram/commands"
	"repairbot/core/telegram/router"
	"repairbot/internal/catalog"
	"repairbot/internal/dialog"
	"repairbot/internal/order"
	"repairbot/internal/session"
)

// App holds the bot's long-lived components.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	catalog  *catalog.Catalog
	sessions *session.Store
	ledger   order.Ledger
	engine   *dialog.Engine
}

// New bootstraps infrastructure and wires the dialog engine. There are no
// package-level singletons: the ledger and session store live on the App and
// are injected into the engine.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	var dbCfg *coredatabase.Config
	if cfg.Storage.Driver == StoragePostgres {
		dbCfg = &cfg.Database
	}

	boot, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: dbCfg,
	})
	if err != nil {
		return nil, err
	}

	cat, err := buildCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	var ledger order.Ledger
	if boot.DB != nil {
		ledger = order.NewPostgresLedger(boot.DB)
	} else {
		ledger = order.NewMemoryLedger()
	}

	sessions := session.NewStore()

	logger.SVCCatalog.Info("catalog loaded",
		slog.String("event", "catalog.loaded"),
		slog.Int("count", cat.Len()),
	)
	logger.L.With("component", "app").Info("storage selected",
		slog.String("event", "storage"),
		slog.String("mode", cfg.Storage.Driver),
	)

	return &App{
		cfg:      cfg,
		db:       boot.DB,
		catalog:  cat,
		sessions: sessions,
		ledger:   ledger,
		engine:   dialog.NewEngine(cat, sessions, ledger),
	}, nil
}

func buildCatalog(entries []ServiceConfig) (*catalog.Catalog, error) {
	if len(entries) == 0 {
		return catalog.Default(), nil
	}
	services := make([]catalog.Service, 0, len(entries))
	for _, e := range entries {
		services = append(services, catalog.Service{
			ID:          e.ID,
			DisplayName: e.Name,
			PriceMinor:  e.PriceMinor,
		})
	}
	return catalog.New(services)
}

// Engine exposes the dialog engine, mainly for tests.
func (a *App) Engine() *dialog.Engine {
	return a.engine
}

// Close releases infrastructure owned by the app.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// TelegramRunOptions assembles the registry, routes, and middleware chain for
// the shared Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Get help",
	})
	reg.RegisterCommand("/services", commands.Command{
		Handler:     a.handleServices,
		Description: "List services",
	})
	reg.RegisterCommand("/orders", commands.Command{
		Handler:     a.handleMyOrders,
		Description: "My orders",
	})
	reg.RegisterCommand("/contact", commands.Command{
		Handler:     a.handleContact,
		Description: "Contact information",
	})

	if err := reg.RegisterCallback(cbService, a.handleServiceCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(cbConfirm, a.handleConfirmCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.UnknownText())
	reg.SetCallbackNotFound(a.UnknownCallback())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
	}, nil
}
