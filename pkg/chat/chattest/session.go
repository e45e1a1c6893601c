// Package chattest provides an in-memory chat.Session for tests.
package chattest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/bwmarrin/discordgo"
)

// ErrForced is returned by calls configured to fail.
var ErrForced = errors.New("forced failure")

// Response is a recorded interaction response.
type Response struct {
	InteractionID string
	Response      *discordgo.InteractionResponse
}

// Sent is a recorded channel message.
type Sent struct {
	ChannelID string
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Files     []*discordgo.File
}

// Session records every call made to it. Set the Fail* fields to make calls return ErrForced.
type Session struct {
	mu sync.Mutex

	Responses  []Response
	Edits      []*discordgo.WebhookEdit
	FollowUps  []*discordgo.WebhookParams
	Messages   []Sent
	Created    []discordgo.GuildChannelCreateData
	Deleted    []string
	RolesAdded []string

	History map[string][]*discordgo.Message
	Members map[string]*discordgo.Member
	Roles   map[string][]*discordgo.Role

	FailRespond       bool
	FailFollowUp      bool
	FailChannelCreate bool
	FailChannelDelete bool
	FailSend          bool

	Latency time.Duration

	// HistoryGate, when set, holds ChannelMessages until it is closed.
	HistoryGate chan struct{}

	nextID int
}

var _ chat.Session = (*Session)(nil)

// New returns an empty session.
func New() *Session {
	return &Session{
		History: make(map[string][]*discordgo.Message),
		Members: make(map[string]*discordgo.Member),
		Roles:   make(map[string][]*discordgo.Role),
	}
}

func (s *Session) id() string {
	s.nextID++
	return fmt.Sprintf("%d", 1000+s.nextID)
}

func (s *Session) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRespond {
		return ErrForced
	}
	s.Responses = append(s.Responses, Response{InteractionID: interaction.ID, Response: resp})
	return nil
}

func (s *Session) InteractionResponseEdit(_ *discordgo.Interaction, newresp *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRespond {
		return nil, ErrForced
	}
	s.Edits = append(s.Edits, newresp)
	return &discordgo.Message{ID: s.id()}, nil
}

func (s *Session) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFollowUp {
		return nil, ErrForced
	}
	s.FollowUps = append(s.FollowUps, data)
	return &discordgo.Message{ID: s.id()}, nil
}

func (s *Session) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content})
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSend {
		return nil, ErrForced
	}
	s.Messages = append(s.Messages, Sent{
		ChannelID: channelID,
		Content:   data.Content,
		Embeds:    data.Embeds,
		Files:     data.Files,
	})
	return &discordgo.Message{ID: s.id(), ChannelID: channelID, Content: data.Content}, nil
}

func (s *Session) ChannelMessages(channelID string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	s.mu.Lock()
	gate := s.HistoryGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.History[channelID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *Session) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailChannelCreate {
		return nil, ErrForced
	}
	s.Created = append(s.Created, data)
	return &discordgo.Channel{ID: "chan-" + s.id(), GuildID: guildID, Name: data.Name}, nil
}

func (s *Session) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailChannelDelete {
		return nil, ErrForced
	}
	s.Deleted = append(s.Deleted, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.Members[guildID+"/"+userID]
	if !ok {
		return nil, ErrForced
	}
	return m, nil
}

func (s *Session) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RolesAdded = append(s.RolesAdded, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (s *Session) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Roles[guildID], nil
}

func (s *Session) HeartbeatLatency() time.Duration {
	return s.Latency
}

// SetMember registers a guild member returned by GuildMember.
func (s *Session) SetMember(guildID string, m *discordgo.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Members[guildID+"/"+m.User.ID] = m
}

// LastResponse returns the most recent interaction response.
func (s *Session) LastResponse() *discordgo.InteractionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return nil
	}
	return s.Responses[len(s.Responses)-1].Response
}

// DeletedChannels returns the deleted channel IDs.
func (s *Session) DeletedChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}

// SentTo returns the messages sent to a channel.
func (s *Session) SentTo(channelID string) []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, 0)
	for _, m := range s.Messages {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}
