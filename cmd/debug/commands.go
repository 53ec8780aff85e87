package debug

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"wagerledger/domain/entities"

	log "github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 10

// initializeCommands sets up all available commands
func (s *Shell) initializeCommands() {
	s.commands = map[string]Command{
		// Utility commands
		"help": {
			Handler:     s.handleHelp,
			Description: "Show available commands",
			Usage:       "help [command]",
			Category:    "utility",
		},

		// Read commands
		"account": {
			Handler:     s.handleAccount,
			Description: "Show an account, creating it on first reference",
			Usage:       "account <user_id>",
			Category:    "read",
		},
		"history": {
			Handler:     s.handleHistory,
			Description: "Show the newest ledger entries of a user",
			Usage:       "history <user_id> [limit]",
			Category:    "read",
		},
		"bets": {
			Handler:     s.handleBets,
			Description: "Show a user's bets on unresolved wagers",
			Usage:       "bets <user_id>",
			Category:    "read",
		},
		"wagers": {
			Handler:     s.handleWagers,
			Description: "List open wagers",
			Usage:       "wagers [limit]",
			Category:    "read",
		},
		"wager": {
			Handler:     s.handleWager,
			Description: "Show a wager with its pools and bets",
			Usage:       "wager <wager_id>",
			Category:    "read",
		},
		"audit": {
			Handler:     s.handleAudit,
			Description: "Check balances against the ledger",
			Usage:       "audit [user_id]",
			Category:    "read",
		},

		// Admin commands
		"create-wager": {
			Handler:     s.handleCreateWager,
			Description: "Create a wager",
			Usage:       "create-wager <creator_id> <title> | <option> | <option> [| ...]",
			Category:    "admin",
		},
		"bet": {
			Handler:     s.handleBet,
			Description: "Place a bet on behalf of a user",
			Usage:       "bet <wager_id> <user_id> <option> <amount>",
			Category:    "admin",
		},
		"close": {
			Handler:     s.handleClose,
			Description: "Stop a wager from accepting bets",
			Usage:       "close <wager_id>",
			Category:    "admin",
		},
		"resolve": {
			Handler:     s.handleResolve,
			Description: "Resolve a wager and pay out",
			Usage:       "resolve <wager_id> <winning_option>",
			Category:    "admin",
		},
		"adjust-balance": {
			Handler:     s.handleAdjustBalance,
			Description: "Credit or debit a user's balance",
			Usage:       "adjust-balance <user_id> <amount>",
			Category:    "admin",
		},
		"daily": {
			Handler:     s.handleDaily,
			Description: "Claim the daily reward for a user",
			Usage:       "daily <user_id>",
			Category:    "admin",
		},
	}
}

// handleHelp shows available commands
func (s *Shell) handleHelp(ctx context.Context, args []string) error {
	if len(args) > 0 {
		cmd, exists := s.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.out, "\n%s - %s\n", args[0], cmd.Description)
		fmt.Fprintf(s.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	categories := map[string][]string{}
	for name, cmd := range s.commands {
		categories[cmd.Category] = append(categories[cmd.Category], name)
	}

	for _, category := range []string{"read", "admin", "utility"} {
		names := categories[category]
		sort.Strings(names)

		fmt.Fprintf(s.out, "\n%s commands:\n", strings.ToUpper(category[:1])+category[1:])
		for _, name := range names {
			fmt.Fprintf(s.out, "  %s %s\n", padRight(name, 16), s.commands[name].Description)
		}
	}

	fmt.Fprintln(s.out, "\nBuilt-in: dry-run [on|off], exit, quit")
	return nil
}

func (s *Shell) handleAccount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", s.commands["account"].Usage)
	}
	userID, err := parseID("user_id", args[0])
	if err != nil {
		return err
	}

	account, err := s.coordinator.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nAccount %d\n", account.UserID)
	fmt.Fprintf(s.out, "  Balance:          %s\n", formatNumber(account.Balance))
	fmt.Fprintf(s.out, "  Starting balance: %s\n", formatNumber(account.StartingBalance))
	if account.LastDailyReward != nil {
		fmt.Fprintf(s.out, "  Last daily:       %s\n", account.LastDailyReward.Format(time.RFC3339))
	}
	fmt.Fprintf(s.out, "  Created:          %s\n", account.CreatedAt.Format(time.RFC3339))
	return nil
}

func (s *Shell) handleHistory(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: %s", s.commands["history"].Usage)
	}
	userID, err := parseID("user_id", args[0])
	if err != nil {
		return err
	}

	limit := defaultHistoryLimit
	if len(args) == 2 {
		limit, err = strconv.Atoi(args[1])
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid limit: %s", args[1])
		}
	}

	entries, err := s.coordinator.History(ctx, userID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.printInfo("No ledger entries")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		reference := "-"
		if entry.ReferenceID != nil {
			reference = strconv.FormatInt(*entry.ReferenceID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Kind.Description(),
			formatSignedNumber(entry.Amount),
			reference,
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"ID", "Time", "Kind", "Amount", "Ref"}, rows))
	return nil
}

func (s *Shell) handleBets(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", s.commands["bets"].Usage)
	}
	userID, err := parseID("user_id", args[0])
	if err != nil {
		return err
	}

	bets, err := s.coordinator.ListUserActiveBets(ctx, userID)
	if err != nil {
		return err
	}
	if len(bets) == 0 {
		s.printInfo("No active bets")
		return nil
	}

	rows := make([][]string, 0, len(bets))
	for _, ub := range bets {
		rows = append(rows, []string{
			strconv.FormatInt(ub.Bet.WagerID, 10),
			truncateString(ub.WagerTitle, 40),
			ub.OptionLabel,
			formatNumber(ub.Bet.Amount),
			ub.WagerStatus.String(),
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"Wager", "Title", "Option", "Stake", "Status"}, rows))
	return nil
}

func (s *Shell) handleWagers(ctx context.Context, args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid limit: %s", args[0])
		}
		limit = n
	}

	wagers, err := s.coordinator.ListOpenWagers(ctx, limit)
	if err != nil {
		return err
	}
	if len(wagers) == 0 {
		s.printInfo("No open wagers")
		return nil
	}

	rows := make([][]string, 0, len(wagers))
	for _, w := range wagers {
		rows = append(rows, []string{
			strconv.FormatInt(w.ID, 10),
			truncateString(w.Title, 40),
			strings.Join(w.Options, " / "),
			w.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"ID", "Title", "Options", "Created"}, rows))
	return nil
}

func (s *Shell) handleWager(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", s.commands["wager"].Usage)
	}
	wagerID, err := parseID("wager_id", args[0])
	if err != nil {
		return err
	}

	detail, err := s.coordinator.GetWager(ctx, wagerID)
	if err != nil {
		return err
	}

	w := detail.Wager
	fmt.Fprintf(s.out, "\nWager #%d: %s\n", w.ID, w.Title)
	if w.Description != "" {
		fmt.Fprintf(s.out, "  %s\n", w.Description)
	}
	fmt.Fprintf(s.out, "  Status: %s   Creator: %d   Pool: %s\n", w.Status, w.CreatorID, formatNumber(detail.TotalPool()))
	if w.WinningOption != nil {
		fmt.Fprintf(s.out, "  Winner: [%d] %s\n", *w.WinningOption, w.OptionLabel(*w.WinningOption))
	}

	pools := detail.OptionPools()
	counts := detail.BetCountByOption()
	rows := make([][]string, 0, len(w.Options))
	for i, option := range w.Options {
		rows = append(rows, []string{
			strconv.Itoa(i),
			option,
			formatNumber(pools[i]),
			strconv.Itoa(counts[i]),
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"#", "Option", "Pool", "Bets"}, rows))
	return nil
}

func (s *Shell) handleAudit(ctx context.Context, args []string) error {
	if len(args) == 1 {
		userID, err := parseID("user_id", args[0])
		if err != nil {
			return err
		}

		audit, err := s.coordinator.Audit(ctx, userID)
		if err != nil {
			return err
		}

		fmt.Fprintf(s.out, "\nAccount %d: balance %s, starting %s, ledger sum %s over %d entries\n",
			audit.UserID,
			formatNumber(audit.Balance),
			formatNumber(audit.StartingBalance),
			formatSignedNumber(audit.EntrySum),
			audit.EntryCount)
		if audit.Consistent() {
			s.printSuccess("Balance matches ledger")
		} else {
			s.printWarning(fmt.Sprintf("Balance drifts from ledger by %s", formatSignedNumber(audit.Drift())))
		}
		return nil
	}

	audits, err := s.coordinator.AuditAll(ctx)
	if err != nil {
		return err
	}
	if len(audits) == 0 {
		s.printSuccess("All balances match the ledger")
		return nil
	}

	rows := make([][]string, 0, len(audits))
	for _, audit := range audits {
		rows = append(rows, []string{
			strconv.FormatInt(audit.UserID, 10),
			formatNumber(audit.Balance),
			formatSignedNumber(audit.EntrySum),
			formatSignedNumber(audit.Drift()),
		})
	}
	s.printWarning(fmt.Sprintf("%d inconsistent accounts", len(audits)))
	fmt.Fprintln(s.out, formatTable([]string{"User", "Balance", "Ledger sum", "Drift"}, rows))
	return nil
}

func (s *Shell) handleCreateWager(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", s.commands["create-wager"].Usage)
	}
	creatorID, err := parseID("creator_id", args[0])
	if err != nil {
		return err
	}

	title, options := parseWagerDefinition(strings.Join(args[1:], " "))
	if len(options) < 2 {
		return fmt.Errorf("a wager needs at least two options separated by '|'")
	}

	fmt.Fprintf(s.out, "\nTitle:   %s\nOptions: %s\n", title, strings.Join(options, " / "))
	if !s.confirmAction("Create this wager?") {
		s.printInfo("Action cancelled")
		return nil
	}

	wager, err := s.coordinator.CreateWager(ctx, creatorID, title, "", options)
	if err != nil {
		return err
	}

	s.logAdminAction("create_wager", log.Fields{"wager_id": wager.ID, "creator_id": creatorID})
	s.printSuccess(fmt.Sprintf("Created wager #%d", wager.ID))
	return nil
}

func (s *Shell) handleBet(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: %s", s.commands["bet"].Usage)
	}
	wagerID, err := parseID("wager_id", args[0])
	if err != nil {
		return err
	}
	userID, err := parseID("user_id", args[1])
	if err != nil {
		return err
	}
	option, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid option: %s", args[2])
	}
	amount, err := parseAmount(args[3])
	if err != nil {
		return err
	}

	if !s.confirmAction(fmt.Sprintf("Place %s on option %d of wager #%d for user %d?", formatNumber(amount), option, wagerID, userID)) {
		s.printInfo("Action cancelled")
		return nil
	}

	bet, err := s.coordinator.PlaceBet(ctx, wagerID, userID, option, amount)
	if err != nil {
		return err
	}

	s.logAdminAction("place_bet", log.Fields{"wager_id": wagerID, "user_id": userID, "bet_id": bet.ID, "amount": amount})
	s.printSuccess(fmt.Sprintf("Placed bet #%d", bet.ID))
	return nil
}

func (s *Shell) handleClose(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", s.commands["close"].Usage)
	}
	wagerID, err := parseID("wager_id", args[0])
	if err != nil {
		return err
	}

	if !s.confirmAction(fmt.Sprintf("Close wager #%d?", wagerID)) {
		s.printInfo("Action cancelled")
		return nil
	}

	if _, err := s.coordinator.Close(ctx, wagerID); err != nil {
		return err
	}

	s.logAdminAction("close_wager", log.Fields{"wager_id": wagerID})
	s.printSuccess(fmt.Sprintf("Wager #%d closed", wagerID))
	return nil
}

func (s *Shell) handleResolve(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", s.commands["resolve"].Usage)
	}
	wagerID, err := parseID("wager_id", args[0])
	if err != nil {
		return err
	}
	option, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid option: %s", args[1])
	}

	if !s.confirmAction(fmt.Sprintf("Resolve wager #%d with option %d as the winner? This cannot be undone.", wagerID, option)) {
		s.printInfo("Action cancelled")
		return nil
	}

	result, err := s.coordinator.Resolve(ctx, wagerID, option)
	if err != nil {
		return err
	}

	s.logAdminAction("resolve_wager", log.Fields{
		"wager_id":       wagerID,
		"winning_option": option,
		"refund":         result.IsRefund(),
		"total_paid":     result.Plan.TotalPaid(),
		"remainder":      result.Plan.Remainder,
	})

	if result.IsRefund() {
		s.printWarning(fmt.Sprintf("Nobody backed option %d, refunded %d bets", option, len(result.Plan.Entries)))
	} else {
		s.printSuccess(fmt.Sprintf("Paid %s to %d winners", formatNumber(result.Plan.TotalPaid()), len(result.Plan.Entries)))
	}
	if result.Plan.Remainder > 0 {
		s.printInfo(fmt.Sprintf("%s lost to rounding", formatNumber(result.Plan.Remainder)))
	}
	return nil
}

func (s *Shell) handleAdjustBalance(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", s.commands["adjust-balance"].Usage)
	}
	userID, err := parseID("user_id", args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("amount must be non-zero")
	}

	account, err := s.coordinator.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nCurrent balance: %s\n", formatNumber(account.Balance))
	fmt.Fprintf(s.out, "Adjustment:      %s\n", formatSignedNumber(amount))
	fmt.Fprintf(s.out, "New balance:     %s\n", formatNumber(account.Balance+amount))

	if !s.confirmAction("Apply this adjustment?") {
		s.printInfo("Action cancelled")
		return nil
	}

	newBalance, err := s.coordinator.AdminAdjust(ctx, s.operatorID, userID, amount)
	if err != nil {
		return err
	}

	s.logAdminAction("adjust_balance", log.Fields{
		"user_id":     userID,
		"amount":      amount,
		"new_balance": newBalance,
	})
	s.printSuccess(fmt.Sprintf("Balance is now %s", formatNumber(newBalance)))
	return nil
}

func (s *Shell) handleDaily(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", s.commands["daily"].Usage)
	}
	userID, err := parseID("user_id", args[0])
	if err != nil {
		return err
	}

	newBalance, err := s.coordinator.ClaimDailyReward(ctx, userID)
	if err != nil {
		var cooldown *entities.DailyRewardCooldownError
		if errors.As(err, &cooldown) {
			s.printWarning(err.Error())
			return nil
		}
		return err
	}

	s.printSuccess(fmt.Sprintf("Daily reward claimed, balance is now %s", formatNumber(newBalance)))
	return nil
}

// parseWagerDefinition splits "title | a | b" into the title and its options
func parseWagerDefinition(input string) (string, []string) {
	parts := strings.Split(input, "|")
	title := strings.TrimSpace(parts[0])

	options := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if option := strings.TrimSpace(part); option != "" {
			options = append(options, option)
		}
	}
	return title, options
}
