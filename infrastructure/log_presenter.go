package infrastructure

import (
	"context"

	"wagerledger/domain/entities"

	log "github.com/sirupsen/logrus"
)

// LogPresenter writes the rendered wager state to the log
type LogPresenter struct{}

// NewLogPresenter creates a presenter for runs without Discord
func NewLogPresenter() *LogPresenter {
	return &LogPresenter{}
}

// Render logs the wager's status and pools
func (p *LogPresenter) Render(ctx context.Context, detail *entities.WagerDetail) error {
	log.WithFields(log.Fields{
		"wagerID":     detail.Wager.ID,
		"title":       detail.Wager.Title,
		"status":      detail.Wager.Status,
		"totalPool":   detail.TotalPool(),
		"optionPools": detail.OptionPools(),
		"bets":        len(detail.Bets),
	}).Info("Wager presentation refreshed")
	return nil
}
