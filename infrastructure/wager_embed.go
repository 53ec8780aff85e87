package infrastructure

import (
	"fmt"
	"strings"

	"wagerledger/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	ColorPrimary = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
)

const progressBarLength = 10

func createProgressBar(percentage float64, length int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	filled := int(float64(length) * percentage / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// formatCompactAmount formats large amounts in a compact way (e.g., 1.2M, 500K)
func formatCompactAmount(amount int64) string {
	if amount >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(amount)/1000000)
	} else if amount >= 1000 {
		return fmt.Sprintf("%.0fK", float64(amount)/1000)
	}
	return fmt.Sprintf("%d", amount)
}

// CreateWagerEmbed renders the wager with its per-option pools
func CreateWagerEmbed(detail *entities.WagerDetail) *discordgo.MessageEmbed {
	wager := detail.Wager
	embed := &discordgo.MessageEmbed{
		Title:       wager.Title,
		Description: wager.Description,
		Color:       ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Wager ID: %d", wager.ID),
		},
	}

	total := detail.TotalPool()
	pools := detail.OptionPools()
	counts := detail.BetCountByOption()

	for i, option := range wager.Options {
		percentage := 0.0
		if total > 0 {
			percentage = float64(pools[i]) * 100 / float64(total)
		}

		name := fmt.Sprintf("%d. %s", i+1, option)
		if wager.WinningOption != nil && *wager.WinningOption == i {
			name = "🏆 " + name
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("%s %.0f%%\n%s staked by %d",
				createProgressBar(percentage, progressBarLength), percentage,
				formatCompactAmount(pools[i]), counts[i]),
			Inline: false,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Total Pot",
		Value:  formatCompactAmount(total),
		Inline: true,
	})

	switch wager.Status {
	case entities.WagerStatusOpen:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Status", Value: "Open for bets", Inline: true,
		})
	case entities.WagerStatusClosed:
		embed.Color = ColorWarning
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Status", Value: "Betting closed, awaiting result", Inline: true,
		})
	case entities.WagerStatusResolved:
		embed.Color = ColorSuccess
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Status", Value: fmt.Sprintf("Resolved: %s", wager.OptionLabel(*wager.WinningOption)), Inline: true,
		})
	}

	return embed
}
