// Package interactions routes Discord interactions to handlers and delivers their responses.
package interactions

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	// DuplicateWindow is how long an interaction key is remembered after it was dispatched or completed.
	DuplicateWindow = 2000 * time.Millisecond

	// sweepAge is the age after which remembered keys are forgotten.
	sweepAge = 5000 * time.Millisecond

	// NamespaceSeparator separates the routing namespace of a custom ID from the rest of it.
	NamespaceSeparator = ":"
)

// Handler handles an interaction and returns what should be sent back.
type Handler func(ctx context.Context, i *discordgo.InteractionCreate) (*Response, error)

// Route is a registered handler and how it is run.
type Route struct {
	Handler Handler

	// Cooldown is how long a user must wait between successful uses. Only applies to commands.
	Cooldown time.Duration

	// Defer acknowledges the interaction before the handler runs.
	Defer bool

	// Ephemeral makes the deferred acknowledgement visible only to the user.
	Ephemeral bool
}

// LanguageResolver returns the language to answer in for a guild.
type LanguageResolver func(ctx context.Context, guildID string) entities.Language

type requestIDKey struct{}

// RequestID returns the ID the router assigned to the interaction being handled.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Option configures a Router.
type Option func(r *Router)

// WithClock replaces the clock used for duplicate and cooldown tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// WithLanguage sets how the language of generic replies is chosen.
func WithLanguage(resolver LanguageResolver) Option {
	return func(r *Router) {
		r.lang = resolver
	}
}

// Router dispatches interactions. It drops duplicates, enforces cooldowns, isolates handler
// failures and delivers every response.
type Router struct {
	l *slog.Logger
	s chat.Session

	commands   map[string]Route
	components map[string]Route
	modals     map[string]Route

	lang LanguageResolver
	now  func() time.Time

	mu        sync.Mutex
	recent    map[string]time.Time
	cooldowns map[string]time.Time
}

// NewRouter creates a router that replies through s.
func NewRouter(l *slog.Logger, s chat.Session, opts ...Option) *Router {
	r := &Router{
		l:          l,
		s:          s,
		commands:   make(map[string]Route),
		components: make(map[string]Route),
		modals:     make(map[string]Route),
		lang: func(context.Context, string) entities.Language {
			return entities.LanguageEnglish
		},
		now:       time.Now,
		recent:    make(map[string]time.Time),
		cooldowns: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command registers the route for a slash command.
func (r *Router) Command(name string, route Route) {
	r.commands[name] = route
}

// Component registers the route for every button or select menu whose custom ID is in namespace.
func (r *Router) Component(namespace string, route Route) {
	r.components[namespace] = route
}

// Modal registers the route for every modal whose custom ID is in namespace.
func (r *Router) Modal(namespace string, route Route) {
	r.modals[namespace] = route
}

// CommandNames returns the names of the registered commands.
func (r *Router) CommandNames() []string {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	return names
}

// Handle is the discordgo event handler.
func (r *Router) Handle(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	r.Dispatch(context.Background(), i)
}

// Namespace returns the routing namespace of a custom ID.
func Namespace(customID string) string {
	ns, _, _ := strings.Cut(customID, NamespaceSeparator)
	return ns
}

// UserID returns the ID of the user that triggered the interaction.
func UserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

type dispatch struct {
	kind  string
	name  string
	key   string
	route Route
}

func (r *Router) classify(i *discordgo.InteractionCreate) (*dispatch, bool) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		route, ok := r.commands[name]
		return &dispatch{kind: "command", name: name, key: name, route: route}, ok
	case discordgo.InteractionMessageComponent:
		id := i.MessageComponentData().CustomID
		ns := Namespace(id)
		route, ok := r.components[ns]
		return &dispatch{kind: "component", name: ns, key: id, route: route}, ok
	case discordgo.InteractionModalSubmit:
		id := i.ModalSubmitData().CustomID
		ns := Namespace(id)
		route, ok := r.modals[ns]
		return &dispatch{kind: "modal", name: ns, key: id, route: route}, ok
	default:
		return nil, false
	}
}

// Dispatch runs the handler registered for the interaction and delivers its response.
func (r *Router) Dispatch(ctx context.Context, i *discordgo.InteractionCreate) {
	start := r.now()

	d, ok := r.classify(i)
	if d == nil {
		// Pings and autocomplete are not routed.
		return
	}

	reqID := uuid.NewString()
	userID := UserID(i)
	l := r.l.With(
		slog.String(logging.KeyRequestID, reqID),
		slog.String(logging.KeyInteraction, d.kind+":"+d.key),
		slog.String(logging.KeyGuildID, i.GuildID),
		slog.String(logging.KeyUserID, userID),
	)
	ctx = context.WithValue(ctx, requestIDKey{}, reqID)

	if !ok {
		l.Warn("No route registered for interaction")
		InteractionsDropped.WithLabelValues(dropReasonUnknown).Inc()
		r.deliver(l, i, Ephemeral(messages.Get(r.lang(ctx, i.GuildID), messages.ErrGeneric)), false)
		return
	}

	dedupKey := userID + "|" + d.key
	if !r.markDispatched(dedupKey, start) {
		l.Debug("Dropping duplicate interaction")
		InteractionsDropped.WithLabelValues(dropReasonDuplicate).Inc()
		return
	}
	defer r.markCompleted(dedupKey)

	cooldownKey := userID + "|" + d.name
	if d.kind == "command" && d.route.Cooldown > 0 {
		if left := r.cooldownLeft(cooldownKey, start); left > 0 {
			InteractionsDropped.WithLabelValues(dropReasonCooldown).Inc()
			secs := strconv.Itoa(int(math.Ceil(left.Seconds())))
			r.deliver(l, i, Ephemeral(messages.Get(r.lang(ctx, i.GuildID), messages.ErrCooldown, "time", secs)), false)
			return
		}
	}

	deferred := false
	if d.route.Defer {
		if err := r.acknowledge(i, d.route.Ephemeral); err != nil {
			l.Error("Error deferring interaction", slog.String(logging.KeyError, err.Error()))
			return
		}
		deferred = true
	}

	resp, err := r.run(ctx, l, d.route.Handler, i)
	outcome := "success"
	if err != nil {
		outcome = "error"
		if ue, isUser := AsUserError(err); isUser {
			outcome = "user_error"
			l.Debug("Handler returned user error", slog.String(logging.KeyError, err.Error()))
			resp = Ephemeral(ue.Message)
		} else {
			l.Error("Error handling interaction", slog.String(logging.KeyError, err.Error()))
			resp = Ephemeral(messages.Get(r.lang(ctx, i.GuildID), messages.ErrGeneric))
		}
	} else if resp == nil {
		resp = Ephemeral(messages.Get(r.lang(ctx, i.GuildID), messages.SuccessGeneric))
	}

	r.deliver(l, i, resp, deferred)

	if err == nil && d.kind == "command" && d.route.Cooldown > 0 {
		r.setCooldown(cooldownKey, r.now().Add(d.route.Cooldown))
	}

	InteractionDuration.WithLabelValues(d.kind, d.name, outcome).Observe(r.now().Sub(start).Seconds())
}

// run calls the handler, turning a panic into an error.
func (r *Router) run(ctx context.Context, l *slog.Logger, h Handler, i *discordgo.InteractionCreate) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			l.Error("Panic in interaction handler",
				slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
				slog.String("stack", string(debug.Stack())),
			)
			resp = nil
			err = fmt.Errorf("panic in handler: %v", rec)
		}
	}()
	return h(ctx, i)
}

// markDispatched records the key and reports whether the interaction should be dispatched.
func (r *Router) markDispatched(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.recent {
		if now.Sub(t) > sweepAge {
			delete(r.recent, k)
		}
	}
	for k, t := range r.cooldowns {
		if !t.After(now) {
			delete(r.cooldowns, k)
		}
	}

	if last, ok := r.recent[key]; ok && now.Sub(last) < DuplicateWindow {
		return false
	}
	r.recent[key] = now
	return true
}

func (r *Router) markCompleted(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent[key] = r.now()
}

func (r *Router) cooldownLeft(key string, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until, ok := r.cooldowns[key]; ok && until.After(now) {
		return until.Sub(now)
	}
	return 0
}

func (r *Router) setCooldown(key string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cooldowns[key] = until
}

func (r *Router) acknowledge(i *discordgo.InteractionCreate, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if i.Type == discordgo.InteractionMessageComponent {
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	} else if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return r.s.InteractionRespond(i.Interaction, resp)
}

// deliver sends the response. It tries the interaction response first, then a follow-up message,
// and gives up with a log line when both fail.
func (r *Router) deliver(l *slog.Logger, i *discordgo.InteractionCreate, resp *Response, deferred bool) {
	var err error
	if deferred {
		_, err = r.s.InteractionResponseEdit(i.Interaction, resp.webhookEdit())
	} else {
		err = r.s.InteractionRespond(i.Interaction, resp.interactionResponse())
	}

	if err != nil {
		l.Warn("Error responding to interaction, trying follow-up", slog.String(logging.KeyError, err.Error()))
		if resp.Kind == KindModal {
			DeliveryFailures.Inc()
			return
		}
		if _, err := r.s.FollowupMessageCreate(i.Interaction, true, resp.webhookParams()); err != nil {
			l.Error("Error delivering response", slog.String(logging.KeyError, err.Error()))
			DeliveryFailures.Inc()
			return
		}
	}

	for f := resp.FollowUp; f != nil; f = f.FollowUp {
		if _, err := r.s.FollowupMessageCreate(i.Interaction, true, f.webhookParams()); err != nil {
			l.Error("Error sending follow-up", slog.String(logging.KeyError, err.Error()))
			DeliveryFailures.Inc()
			return
		}
	}
}
