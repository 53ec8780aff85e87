package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"wagerledger/application"

	log "github.com/sirupsen/logrus"
)

// Shell is the interactive operator console
type Shell struct {
	coordinator *application.WagerCoordinator
	operatorID  int64
	commands    map[string]Command
	history     []string
	in          *bufio.Scanner
	out         io.Writer
	dryRun      bool
	running     bool
}

// Command represents a debug command
type Command struct {
	Handler     CommandHandler
	Description string
	Usage       string
	Category    string // "read", "admin", "utility"
}

// CommandHandler is a function that handles a debug command
type CommandHandler func(ctx context.Context, args []string) error

// NewShell creates a shell acting as operatorID for admin commands
func NewShell(coordinator *application.WagerCoordinator, operatorID int64, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		coordinator: coordinator,
		operatorID:  operatorID,
		history:     []string{},
		in:          bufio.NewScanner(in),
		out:         out,
		running:     true,
	}
	s.initializeCommands()
	return s
}

// Run reads commands until exit, EOF or ctx cancellation
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Wager Ledger Debug Shell")
	fmt.Fprintln(s.out, "========================")
	fmt.Fprintln(s.out, "Type 'help' for available commands")

	for s.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(s.out, "\ndebug> ")
		if !s.in.Scan() {
			break
		}

		input := strings.TrimSpace(s.in.Text())
		if input == "" {
			continue
		}
		s.history = append(s.history, input)
		s.Execute(ctx, input)
	}

	if err := s.in.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// Execute runs one command line
func (s *Shell) Execute(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmdName := parts[0]
	args := parts[1:]

	switch cmdName {
	case "exit", "quit":
		s.running = false
		fmt.Fprintln(s.out, "Exiting debug shell.")
		return
	case "dry-run":
		if err := s.handleDryRun(args); err != nil {
			s.printError(err)
		}
		return
	}

	cmd, exists := s.commands[cmdName]
	if !exists {
		s.printError(fmt.Errorf("unknown command: %s. Type 'help' for available commands", cmdName))
		return
	}

	if err := cmd.Handler(ctx, args); err != nil {
		s.printError(err)
	}
}

// printError displays an error message in red
func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "\033[31m❌ Error: %s\033[0m\n", err.Error())
}

// printSuccess displays a success message in green
func (s *Shell) printSuccess(msg string) {
	fmt.Fprintf(s.out, "\033[32m✅ %s\033[0m\n", msg)
}

// printWarning displays a warning message in yellow
func (s *Shell) printWarning(msg string) {
	fmt.Fprintf(s.out, "\033[33m⚠️  %s\033[0m\n", msg)
}

// printInfo displays an info message in blue
func (s *Shell) printInfo(msg string) {
	fmt.Fprintf(s.out, "\033[34mℹ️  %s\033[0m\n", msg)
}

// confirmAction prompts for confirmation. Always false in dry-run mode.
func (s *Shell) confirmAction(prompt string) bool {
	if s.dryRun {
		s.printInfo("Dry-run mode: Would execute action")
		return false
	}

	fmt.Fprintf(s.out, "\n\033[33m⚠️  %s [y/N]: \033[0m", prompt)
	if !s.in.Scan() {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return response == "y" || response == "yes"
}

// handleDryRun toggles dry-run mode
func (s *Shell) handleDryRun(args []string) error {
	if len(args) == 0 {
		status := "off"
		if s.dryRun {
			status = "on"
		}
		s.printInfo(fmt.Sprintf("Dry-run mode is currently: %s", status))
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		s.dryRun = true
		s.printWarning("Dry-run mode enabled - no changes will be made")
	case "off", "false", "0":
		s.dryRun = false
		s.printSuccess("Dry-run mode disabled")
	default:
		return fmt.Errorf("invalid dry-run value. Use 'on' or 'off'")
	}
	return nil
}

// logAdminAction logs admin actions for audit purposes
func (s *Shell) logAdminAction(action string, details log.Fields) {
	fields := log.Fields{
		"action":     action,
		"operatorID": s.operatorID,
		"timestamp":  time.Now().Unix(),
		"source":     "debug_shell",
	}
	for k, v := range details {
		fields[k] = v
	}
	log.WithFields(fields).Info("Admin action executed via debug shell")
}
