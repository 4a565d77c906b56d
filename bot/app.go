package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/kagace/melobot/audit"
	"github.com/kagace/melobot/core/bootstrap"
	coreconfig "github.com/kagace/melobot/core/config"
	tg "github.com/kagace/melobot/core/telegram"
	"github.com/kagace/melobot/core/telegram/commands"
	"github.com/kagace/melobot/core/telegram/router"
	tgsender "github.com/kagace/melobot/core/telegram/sender"
	"github.com/kagace/melobot/core/telegram/state"
	"github.com/kagace/melobot/providers/genius"
	"github.com/kagace/melobot/providers/spotify"
	"github.com/kagace/melobot/providers/youtube"
)

// App wires configuration, providers, audit, and handlers together.
type App struct {
	cfg        *Config
	states     state.Manager
	reg        *tg.Registry
	handlers   *Handlers
	recorder   audit.Recorder
	dispatcher *tgsender.Dispatcher
	db         *sqlx.DB
}

// Bootstrap initializes infrastructure and builds the application.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:       &cfg.Core,
		Database:     cfg.Database,
		SkipDatabase: cfg.Audit.Backend != AuditBackendPostgres,
	})
	if err != nil {
		return nil, err
	}

	var recorder audit.Recorder
	switch cfg.Audit.Backend {
	case AuditBackendPostgres:
		recorder = audit.NewPostgresRecorder(res.DB)
	default:
		recorder, err = audit.NewCSVRecorder(cfg.Audit.Dir, cfg.Audit.File)
		if err != nil {
			if res.DB != nil {
				_ = res.DB.Close()
			}
			return nil, fmt.Errorf("bot: audit recorder init failed: %w", err)
		}
	}

	httpClient := tg.BuildHTTPClient()
	dispatcher := tgsender.NewDispatcher(tgsender.Options{})
	states := state.NewMemoryManager()

	app := &App{
		cfg:    cfg,
		states: states,
		reg:    tg.NewRegistry(),
		handlers: &Handlers{
			States:    states,
			Catalog:   spotify.New(spotify.Config(cfg.Providers.Spotify), httpClient),
			Videos:    youtube.New(youtube.Config(cfg.Providers.YouTube), httpClient),
			Lyrics:    genius.New(genius.Config(cfg.Providers.Genius), httpClient),
			startedAt: time.Now(),
			Errors:    dispatcher.ErrorCount,
		},
		recorder:   recorder,
		dispatcher: dispatcher,
		db:         res.DB,
	}
	app.wire()
	return app, nil
}

// wire registers commands, selection labels, and pending-intent handlers.
func (a *App) wire() {
	h := a.handlers
	rec := a.recorder

	a.reg.RegisterCommand("/start", commands.Command{
		Handler:     audit.Middleware(rec, "Start command", "Telegram", "Bot started")(h.Start),
		Description: "Начать работу с ботом",
	})
	a.reg.RegisterCommand("/help", commands.Command{
		Handler:     audit.Middleware(rec, "Help command", "Telegram", "Help message")(h.Help),
		Description: "Справка по возможностям",
	})
	a.reg.RegisterCommand("/stats", commands.Command{
		Handler:     audit.Middleware(rec, "Stats command", "Telegram", "Service stats")(h.Stats),
		Description: "Служебная статистика",
		AdminOnly:   true,
		Hidden:      true,
	})

	a.reg.RegisterLabel(LabelTrackSearch,
		audit.Middleware(rec, "Track search init", "Telegram", "Waiting track name")(h.SelectTrackSearch))
	a.reg.RegisterLabel(LabelAlbumSearch,
		audit.Middleware(rec, "Album search init", "Telegram", "Waiting album name")(h.SelectAlbumSearch))
	a.reg.RegisterLabel(LabelVideoSearch,
		audit.Middleware(rec, "YouTube search init", "Telegram", "Waiting video query")(h.SelectVideoSearch))
	a.reg.RegisterLabel(LabelLyricsSearch,
		audit.Middleware(rec, "Lyrics search init", "Telegram", "Waiting song name")(h.SelectLyricsSearch))

	typing := audit.Middleware(rec, audit.ActionTyping, audit.None, audit.None)
	state.RegisterHandler(StateAwaitingTrackQuery, typing(h.TrackQuery))
	state.RegisterHandler(StateAwaitingAlbumQuery, typing(h.AlbumQuery))
	state.RegisterHandler(StateAwaitingVideoQuery, typing(h.VideoQuery))
	state.RegisterHandler(StateAwaitingLyricsQuery, typing(h.LyricsQuery))

	// Idle free text is recorded but not replied to.
	a.reg.SetTextFallback(typing(func(tele.Context) error { return nil }))
}

// CoreConfig exposes the embedded core configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return &a.cfg.Core
}

// TelegramRunOptions builds routes and middleware for the bot runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.states, a.reg, router.TextOptions{})...)

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    a.reg,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStop: func(context.Context, tg.Runtime) error {
			if err := a.recorder.Close(); err != nil {
				return err
			}
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
