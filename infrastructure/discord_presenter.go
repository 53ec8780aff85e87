package infrastructure

import (
	"context"
	"fmt"

	"wagerledger/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// messageEditor is the subset of *discordgo.Session used to update messages
type messageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordPresenter renders wagers by editing their Discord message
type DiscordPresenter struct {
	session messageEditor
}

// NewDiscordPresenter creates a presenter on an open session
func NewDiscordPresenter(session messageEditor) *DiscordPresenter {
	return &DiscordPresenter{session: session}
}

// Render edits the wager's message. Wagers without a handle are skipped.
func (p *DiscordPresenter) Render(ctx context.Context, detail *entities.WagerDetail) error {
	handle := detail.Wager.Presentation
	if handle == nil {
		log.WithField("wagerID", detail.Wager.ID).Debug("Wager has no presentation handle, skipping render")
		return nil
	}

	messageEdit := &discordgo.MessageEdit{
		Channel: fmt.Sprintf("%d", handle.ChannelID),
		ID:      fmt.Sprintf("%d", handle.MessageID),
		Embeds:  &[]*discordgo.MessageEmbed{CreateWagerEmbed(detail)},
	}

	if _, err := p.session.ChannelMessageEditComplex(messageEdit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to update wager message: %w", err)
	}

	log.WithFields(log.Fields{
		"messageID": handle.MessageID,
		"channel":   handle.ChannelID,
		"wagerID":   detail.Wager.ID,
		"status":    detail.Wager.Status,
	}).Debug("Updated wager message")
	return nil
}

// OpenDiscordSession opens a bot session for message edits
func OpenDiscordSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord session: %w", err)
	}
	return session, nil
}
