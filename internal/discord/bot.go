// Package discord is the chat-gateway transport adapter. It maps gateway
// messages into canonical events and renders reply envelopes back as
// channel messages. Connection, reconnect, and heartbeat handling belong
// to the discordgo session.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-banker/internal/dispatch"
	"github.com/keshon/server-banker/internal/event"
	"github.com/keshon/server-banker/internal/respond"
)

// Bot is the Discord gateway adapter.
type Bot struct {
	dg         *discordgo.Session
	dispatcher *dispatch.Dispatcher
	prefix     string
	ctx        context.Context
}

// NewBot creates the adapter. prefix marks messages that carry commands;
// everything else is forwarded as a system event for presence logging.
func NewBot(d *dispatch.Dispatcher, prefix string) *Bot {
	if prefix == "" {
		prefix = "!"
	}
	return &Bot{dispatcher: d, prefix: prefix}
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	// In-flight handlers inherit the run context so shutdown cancels them.
	b.ctx = ctx

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Gateway shutdown signal received")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onMessageCreate is called for every guild message. Prefixed messages
// become command events; the rest become system events so channel
// presence stays current.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		// DMs have no server scope; the ledger is per-server only.
		return
	}

	text, reply := b.handleMessage(b.ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Content)
	if !reply || text == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, text); err != nil {
		log.Printf("[ERR] Failed to send reply to %s: %v", m.ChannelID, err)
	}
}

// handleMessage maps one guild message into the canonical pipeline and
// returns the reply text plus whether it should be sent (only command
// events get replies).
func (b *Bot) handleMessage(ctx context.Context, serverID, channelID, userID, content string) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	typ := event.TypeSystem
	raw := content
	if strings.HasPrefix(content, b.prefix) {
		typ = event.TypeCommand
		raw = strings.TrimPrefix(content, b.prefix)
	}

	ev, err := event.Normalize(event.Payload{
		ServerID:  serverID,
		ChannelID: channelID,
		UserID:    userID,
		RawInput:  raw,
	}, typ, event.SourceGateway)
	if err != nil {
		// Empty content etc. — nothing to dispatch.
		return "", false
	}

	res := b.dispatcher.Dispatch(ctx, ev)
	if typ != event.TypeCommand {
		return "", false
	}
	return respond.Format(res).Text, true
}
