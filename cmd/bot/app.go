package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/satla/cmd/bot/config"
	"github.com/Jacobbrewer1/satla/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/Jacobbrewer1/satla/pkg/request"
	"github.com/Jacobbrewer1/satla/pkg/ticketing"
	"github.com/Jacobbrewer1/satla/pkg/welcome"
	"github.com/alexliesenfeld/health"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	shutdownTimeout = 10 * time.Second
)

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router of the monitoring server.
	r *mux.Router

	// svr is the monitoring server.
	svr *http.Server

	// cfg is the parsed configuration.
	cfg *config.Config

	// s is the discord session.
	s *discordgo.Session

	// chat is what replies and side effects are sent through. It is s outside of tests.
	chat chat.Session

	// state is the gateway cache.
	state guildState

	// store is the open database.
	store *config.Store

	// interactions routes every interaction to its handler.
	interactions *interactions.Router

	checker  *permissions.Checker
	audit    *ticketing.AuditSink
	engine   *ticketing.Engine
	tickets  *ticketing.Handlers
	greeter  *welcome.Greeter
	health   health.Checker
	commands []*command

	startedAt time.Time
	now       func() time.Time
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger:    l,
		r:         r,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Run connects everything described by cfg and blocks until the process is told to stop.
func (a *App) Run(cfg *config.Config) error {
	a.cfg = cfg

	ctx := context.Background()
	store, err := cfg.Connect(ctx, a.Logger)
	if err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	a.store = store

	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.wire()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info("Logged in", slog.String("username", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})
	a.RegisterDiscordHandlers()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.Info("Bot is now running.")

	a.health = a.healthChecker()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	a.Info("Received shutdown signal", slog.String("signal", sig.String()))
	return a.ShutdownHook()
}

// wire builds the interaction handling on top of the session and the store.
func (a *App) wire() {
	if a.chat == nil {
		a.chat = a.s
	}
	if a.state == nil {
		a.state = &sessionState{s: a.s}
	}

	a.checker = permissions.NewChecker()
	a.audit = ticketing.NewAuditSink(a.Logger, a.chat)
	a.engine = ticketing.NewEngine(a.Logger, a.chat, a.store.Tickets, a.checker, a.audit)
	a.tickets = ticketing.NewHandlers(a.Logger, a.engine, a.store.Guilds, a.guildOwner)
	a.greeter = welcome.NewGreeter(a.Logger, a.chat, a.store.Guilds)

	a.interactions = interactions.NewRouter(a.Logger, a.chat, interactions.WithLanguage(a.guildLanguage))
	a.tickets.Register(a.interactions)
	a.commands = a.commandSet()
	for _, cmd := range a.commands {
		a.interactions.Command(cmd.def.Name, cmd.route)
	}
}

// ShutdownHook stops the bot and releases every resource.
func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}
	if a.health != nil {
		a.health.Stop()
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}

	// Pending audit posts go out before the database closes.
	a.audit.Flush()

	if err := a.store.DB.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error disconnecting from the database: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	a.s = dg
	return nil
}

func (a *App) runServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, middlewareHttp(a.Logger, promhttp.Handler().ServeHTTP)).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.Logger, health.NewHandler(a.health).ServeHTTP)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) RegisterDiscordHandlers() {
	a.s.AddHandler(a.countEvent)
	a.s.AddHandler(a.guildJoinedHandler)
	a.s.AddHandler(a.guildLeaveHandler)
	a.s.AddHandler(a.memberJoinedHandler)
	a.s.AddHandler(a.interactions.Handle)
}

func (a *App) countEvent(_ *discordgo.Session, e *discordgo.Event) {
	if e.Type != "" {
		monitoring.TotalDiscordEvents.WithLabelValues(e.Type).Inc()
		return
	}
	// If there is no type, then use the operation code.
	monitoring.TotalDiscordEvents.WithLabelValues("OP_" + strconv.Itoa(e.Operation)).Inc()
}

// registerSlashCommands replaces the registered commands with the current set.
func (a *App) registerSlashCommands() error {
	defs := make([]*discordgo.ApplicationCommand, 0, len(a.commands))
	for _, cmd := range a.commands {
		defs = append(defs, cmd.def)
	}

	registered, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, a.cfg.GuildId, defs)
	if err != nil {
		return fmt.Errorf("error overwriting commands: %w", err)
	}

	scope := "global"
	if a.cfg.GuildId != "" {
		scope = a.cfg.GuildId
	}
	a.Info("Registered slash commands", slog.Int("count", len(registered)), slog.String("scope", scope))
	return nil
}

// guildOwner returns the owner of a cached guild.
func (a *App) guildOwner(guildID string) string {
	g, err := a.state.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.OwnerID
}

// guildLanguage returns the language configured for a guild.
func (a *App) guildLanguage(ctx context.Context, guildID string) entities.Language {
	if guildID == "" {
		return entities.LanguageEnglish
	}
	g, err := dataaccess.LoadGuild(ctx, a.store.Guilds, guildID)
	if err != nil {
		a.Warn("Error loading guild language", slog.String(logging.KeyGuildID, guildID), slog.String(logging.KeyError, err.Error()))
		return entities.LanguageEnglish
	}
	return g.Lang()
}
