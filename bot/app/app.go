// Package app assembles the storefront bot: catalog, sessions, stats,
// relay and content delivery wired onto the Telegram transport.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rajcricket/prepbot/bot/catalog"
	"github.com/rajcricket/prepbot/bot/content"
	"github.com/rajcricket/prepbot/bot/flow"
	"github.com/rajcricket/prepbot/bot/relay"
	"github.com/rajcricket/prepbot/bot/session"
	"github.com/rajcricket/prepbot/bot/stats"
	coreconfig "github.com/rajcricket/prepbot/core/config"
	"github.com/rajcricket/prepbot/core/database"
	"github.com/rajcricket/prepbot/core/logger"
	"github.com/rajcricket/prepbot/core/telegram"
	"github.com/rajcricket/prepbot/core/telegram/commands"
	tgmiddleware "github.com/rajcricket/prepbot/core/telegram/middleware"
	"github.com/rajcricket/prepbot/core/telegram/router"
	tgsender "github.com/rajcricket/prepbot/core/telegram/sender"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// App holds the assembled application state.
type App struct {
	cfg *coreconfig.Config
	db  *sqlx.DB

	catalog  *catalog.Registry
	flow     *flow.Flow
	sessions *session.Store
	store    *stats.Store
	usage    *stats.Service
	relay    *relay.Relay
	content  *content.Deliverer

	bot *tele.Bot
}

// courseNames adapts the catalog to the relay's lookup interface.
type courseNames struct{ reg *catalog.Registry }

func (n courseNames) CourseName(id string) (string, bool) {
	c, err := n.reg.Course(id)
	if err != nil {
		return "", false
	}
	return c.Name, true
}

// New runs migrations, connects storage, loads the catalog and builds the
// application graph. The Telegram bot itself is bound later, on transport
// start.
func New(cfg *coreconfig.Config) (*App, error) {
	if err := database.RunMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("app: migrations: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database: %w", err)
	}

	reg, err := catalog.Load(cfg.Bot.CatalogPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("app: catalog: %w", err)
	}

	store := stats.NewStore(db)
	f := &flow.Flow{Catalog: reg, PaymentLink: cfg.Bot.PaymentLink}

	a := &App{
		cfg:      cfg,
		db:       db,
		catalog:  reg,
		flow:     f,
		sessions: session.NewStore(),
		store:    store,
		usage:    stats.NewService(store, 3*time.Second),
		relay: &relay.Relay{
			AdminID: cfg.Telegram.AdminID,
			Courses: courseNames{reg: reg},
		},
		content: &content.Deliverer{
			ChannelID: cfg.Bot.ChannelID,
			Upsell:    f.UpsellMarkup,
		},
	}

	logger.Info(logger.Background(), "app", "ready",
		slog.Int("courses", len(reg.Courses())),
		slog.Int64("channel_id", cfg.Bot.ChannelID),
	)
	return a, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) bindBot(bot *tele.Bot) {
	a.bot = bot
	a.relay.Bot = bot
	a.content.Bot = bot
}

// notifyAdmin reports a recovered panic to the admin chat.
func (a *App) notifyAdmin(_ tele.Context, description string) {
	bot := a.bot
	if bot == nil {
		return
	}
	_, _ = bot.Send(tele.ChatID(a.cfg.Telegram.AdminID), "⚠️ "+description)
}

// buildRegistry declares all commands and callbacks.
func (a *App) buildRegistry() *telegram.Registry {
	reg := telegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the course menu",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Cancel the current action",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Usage statistics",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/broadcast", commands.Command{
		Handler:     a.handleBroadcast,
		Description: "Send a message to all users",
		AdminOnly:   true,
	})

	_ = reg.RegisterCallback(flow.KeyMainMenu, a.cbMainMenu)
	_ = reg.RegisterCallback(flow.KeyBuyCourse, a.cbBuyCourse)
	_ = reg.RegisterCallback(flow.KeyTalkAdmin, a.cbTalkAdmin)
	_ = reg.RegisterCallback(flow.KeyShareScreenshot, a.cbShareScreenshot)

	_ = reg.RegisterCallbackPrefix(flow.PrefixSubject, a.cbSubject)
	_ = reg.RegisterCallbackPrefix(flow.PrefixDemoVideo, a.cbDemoVideo)
	_ = reg.RegisterCallbackPrefix(flow.PrefixDemoMaterial, a.cbDemoMaterial)
	_ = reg.RegisterCallbackPrefix(flow.PrefixCourse, a.cbCourse)

	return reg
}

// TelegramRunOptions assembles the transport configuration for RunTelegram.
func (a *App) TelegramRunOptions() telegram.RunOptions {
	reg := a.buildRegistry()

	adminGate := telegram.AdminGate(a.cfg.Telegram.AdminID, nil)

	routes := []telegram.Route{
		{Endpoint: tele.OnCallback, Handler: router.CallbackRoute(reg)},
		{Endpoint: tele.OnText, Handler: router.TextRoute(a.onText)},
		{Endpoint: tele.OnPhoto, Handler: router.PhotoRoute(a.onPhoto)},
		{Endpoint: tele.OnMedia, Handler: router.MediaRoute(a.onOtherMedia)},
	}
	for name, cmd := range reg.Commands() {
		routes = append(routes, telegram.Route{
			Endpoint: name,
			Handler:  router.CommandRoute(name, cmd, adminGate),
		})
	}

	var notify tgmiddleware.PanicNotifier = a.notifyAdmin

	return telegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		DispatcherOptions: tgsender.Options{
			QueueSize:    256,
			Workers:      4,
			MaxRetries:   2,
			RetryBackoff: 2 * time.Second,
		},
		Middlewares: telegram.DefaultMiddlewares(a.cfg, notify),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			a.bindBot(rt.Bot)
			logger.Info(ctx, "app", "started",
				slog.Int64("admin_id", a.cfg.Telegram.AdminID),
				slog.Int("commands", len(rt.Registry.Commands())),
				slog.Int("callbacks", len(rt.Registry.ListCallbacks())),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt telegram.Runtime) error {
			logger.Info(ctx, "app", "stopping",
				slog.Uint64("send_errors", rt.Dispatcher.ErrorCount()),
			)
			return nil
		},
	}
}
