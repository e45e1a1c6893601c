package interactions

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat/chattest"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) handler(resp *Response, err error) Handler {
	return func(context.Context, *discordgo.InteractionCreate) (*Response, error) {
		c.mu.Lock()
		c.n++
		c.mu.Unlock()
		return resp, err
	}
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newTestRouter(t *testing.T) (*Router, *chattest.Session, *fakeClock) {
	t.Helper()
	s := chattest.New()
	clock := newFakeClock()
	r := NewRouter(slog.Default(), s, WithClock(clock.Now))
	return r, s, clock
}

func TestRouter_DuplicateSuppression(t *testing.T) {
	r, s, clock := newTestRouter(t)
	c := new(counter)
	r.Component("ticket", Route{Handler: c.handler(Ephemeral("ok"), nil)})

	m := chattest.Member("u1", 0)
	r.Dispatch(context.Background(), chattest.Button(m, "g", "ticket:create"))
	clock.Advance(1999 * time.Millisecond)
	r.Dispatch(context.Background(), chattest.Button(m, "g", "ticket:create"))
	require.Equal(t, 1, c.count())
	require.Len(t, s.Responses, 1)

	// Another user is not a duplicate.
	r.Dispatch(context.Background(), chattest.Button(chattest.Member("u2", 0), "g", "ticket:create"))
	require.Equal(t, 2, c.count())

	// Another custom ID is not a duplicate.
	r.Dispatch(context.Background(), chattest.Button(m, "g", "ticket:claim:TICKET-0001"))
	require.Equal(t, 3, c.count())

	clock.Advance(2001 * time.Millisecond)
	r.Dispatch(context.Background(), chattest.Button(m, "g", "ticket:create"))
	require.Equal(t, 4, c.count())
}

func TestRouter_SweepsOldKeys(t *testing.T) {
	r, _, clock := newTestRouter(t)
	r.Component("ticket", Route{Handler: new(counter).handler(nil, nil)})

	r.Dispatch(context.Background(), chattest.Button(chattest.Member("u1", 0), "g", "ticket:create"))
	require.Len(t, r.recent, 1)

	clock.Advance(5001 * time.Millisecond)
	r.Dispatch(context.Background(), chattest.Button(chattest.Member("u2", 0), "g", "ticket:create"))
	require.Len(t, r.recent, 1)
	_, ok := r.recent["u2|ticket:create"]
	require.True(t, ok)
}

func TestRouter_Cooldown(t *testing.T) {
	r, s, clock := newTestRouter(t)
	c := new(counter)
	r.Command("ping", Route{Handler: c.handler(Message("pong"), nil), Cooldown: 3 * time.Second})

	m := chattest.Member("u1", 0)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "ping"))
	require.Equal(t, 1, c.count())

	clock.Advance(2100 * time.Millisecond)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "ping"))
	require.Equal(t, 1, c.count())
	last := s.LastResponse()
	require.Equal(t, "⏱️ Please wait 1 seconds before using this command again.", last.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, last.Data.Flags)

	clock.Advance(DuplicateWindow)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "ping"))
	require.Equal(t, 2, c.count())
}

func TestRouter_CooldownRoundsUp(t *testing.T) {
	r, s, clock := newTestRouter(t)
	r.Command("health", Route{Handler: new(counter).handler(Message("ok"), nil), Cooldown: 30 * time.Second})

	m := chattest.Member("u1", 0)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "health"))
	clock.Advance(2500 * time.Millisecond)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "health"))
	require.Equal(t, "⏱️ Please wait 28 seconds before using this command again.", s.LastResponse().Data.Content)
}

func TestRouter_CooldownNotSetOnError(t *testing.T) {
	r, _, clock := newTestRouter(t)
	c := new(counter)
	r.Command("info", Route{Handler: c.handler(nil, errors.New("boom")), Cooldown: 10 * time.Second})

	m := chattest.Member("u1", 0)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "info"))
	clock.Advance(DuplicateWindow)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "info"))
	require.Equal(t, 2, c.count())

	userErr := new(counter)
	r.Command("locale", Route{Handler: userErr.handler(nil, NewUserError("nope")), Cooldown: 5 * time.Second})
	r.Dispatch(context.Background(), chattest.Command(m, "g", "locale"))
	clock.Advance(DuplicateWindow)
	r.Dispatch(context.Background(), chattest.Command(m, "g", "locale"))
	require.Equal(t, 2, userErr.count())
}

func TestRouter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		want    string
	}{
		{
			name: "user error",
			handler: func(context.Context, *discordgo.InteractionCreate) (*Response, error) {
				return nil, WrapUserError("❌ Ticket not found.", errors.New("missing"))
			},
			want: "❌ Ticket not found.",
		},
		{
			name: "internal error",
			handler: func(context.Context, *discordgo.InteractionCreate) (*Response, error) {
				return nil, errors.New("database down")
			},
			want: "❌ An error occurred while processing your request.",
		},
		{
			name: "panic",
			handler: func(context.Context, *discordgo.InteractionCreate) (*Response, error) {
				panic("boom")
			},
			want: "❌ An error occurred while processing your request.",
		},
		{
			name: "nil response",
			handler: func(context.Context, *discordgo.InteractionCreate) (*Response, error) {
				return nil, nil
			},
			want: "✅ Operation completed successfully.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s, _ := newTestRouter(t)
			r.Command("cmd", Route{Handler: tt.handler})

			require.NotPanics(t, func() {
				r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
			})
			last := s.LastResponse()
			require.NotNil(t, last)
			require.Equal(t, tt.want, last.Data.Content)
			require.Equal(t, discordgo.MessageFlagsEphemeral, last.Data.Flags)
		})
	}
}

func TestRouter_LocalizedGenericError(t *testing.T) {
	s := chattest.New()
	r := NewRouter(slog.Default(), s, WithLanguage(func(context.Context, string) entities.Language {
		return entities.LanguageHebrew
	}))
	r.Command("cmd", Route{Handler: new(counter).handler(nil, errors.New("boom"))})

	r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
	require.Equal(t, "❌ אירעה שגיאה בעת עיבוד הבקשה שלך.", s.LastResponse().Data.Content)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, s, _ := newTestRouter(t)
	r.Dispatch(context.Background(), chattest.Button(chattest.Member("u", 0), "g", "other:thing"))
	require.Equal(t, "❌ An error occurred while processing your request.", s.LastResponse().Data.Content)
}

func TestRouter_Deliver(t *testing.T) {
	t.Run("falls back to follow-up", func(t *testing.T) {
		r, s, _ := newTestRouter(t)
		s.FailRespond = true
		r.Command("cmd", Route{Handler: new(counter).handler(Message("hello"), nil)})

		r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
		require.Len(t, s.FollowUps, 1)
		require.Equal(t, "hello", s.FollowUps[0].Content)
	})

	t.Run("gives up when both fail", func(t *testing.T) {
		r, s, _ := newTestRouter(t)
		s.FailRespond = true
		s.FailFollowUp = true
		r.Command("cmd", Route{Handler: new(counter).handler(Message("hello"), nil)})

		require.NotPanics(t, func() {
			r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
		})
		require.Empty(t, s.FollowUps)
	})

	t.Run("deferred edits the response", func(t *testing.T) {
		r, s, _ := newTestRouter(t)
		r.Command("cmd", Route{Handler: new(counter).handler(Message("done"), nil), Defer: true, Ephemeral: true})

		r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
		require.Len(t, s.Responses, 1)
		require.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, s.Responses[0].Response.Type)
		require.Equal(t, discordgo.MessageFlagsEphemeral, s.Responses[0].Response.Data.Flags)
		require.Len(t, s.Edits, 1)
		require.Equal(t, "done", *s.Edits[0].Content)
	})

	t.Run("follow-up chain", func(t *testing.T) {
		r, s, _ := newTestRouter(t)
		resp := Update("claimed")
		resp.FollowUp = Message("notice")
		r.Component("ticket", Route{Handler: new(counter).handler(resp, nil)})

		r.Dispatch(context.Background(), chattest.Button(chattest.Member("u", 0), "g", "ticket:claim:TICKET-0001"))
		require.Equal(t, discordgo.InteractionResponseUpdateMessage, s.LastResponse().Type)
		require.Len(t, s.FollowUps, 1)
		require.Equal(t, "notice", s.FollowUps[0].Content)
	})

	t.Run("modal", func(t *testing.T) {
		r, s, _ := newTestRouter(t)
		r.Component("ticket", Route{Handler: new(counter).handler(ShowModal(&Modal{CustomID: "ticket:submit", Title: "Create"}), nil)})

		r.Dispatch(context.Background(), chattest.Button(chattest.Member("u", 0), "g", "ticket:create"))
		last := s.LastResponse()
		require.Equal(t, discordgo.InteractionResponseModal, last.Type)
		require.Equal(t, "ticket:submit", last.Data.CustomID)
	})
}

func TestRouter_RequestID(t *testing.T) {
	r, _, _ := newTestRouter(t)
	var got string
	r.Command("cmd", Route{Handler: func(ctx context.Context, _ *discordgo.InteractionCreate) (*Response, error) {
		got = RequestID(ctx)
		return nil, nil
	}})

	r.Dispatch(context.Background(), chattest.Command(chattest.Member("u", 0), "g", "cmd"))
	require.Len(t, got, 36)
}

func TestNamespace(t *testing.T) {
	require.Equal(t, "ticket", Namespace("ticket:claim:TICKET-0001"))
	require.Equal(t, "ticket", Namespace("ticket"))
	require.Equal(t, "", Namespace(""))
}
