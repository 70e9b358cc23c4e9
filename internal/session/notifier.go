package session

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// Notifier surfaces the outcome of an action to the user.
type Notifier interface {
	Success(action Action, message string)
	Failure(action Action, err error)
}

type NopNotifier struct{}

func (NopNotifier) Success(Action, string) {}
func (NopNotifier) Failure(Action, error) {}

// ConsoleNotifier prints colored alerts to a terminal.
type ConsoleNotifier struct {
	Out io.Writer
}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{Out: os.Stderr}
}

func (n *ConsoleNotifier) Success(_ Action, message string) {
	color.New(color.FgGreen, color.Bold).Fprintln(n.Out, message)
}

func (n *ConsoleNotifier) Failure(action Action, err error) {
	color.New(color.FgRed, color.Bold).Fprintln(n.Out, failureMessage(action))
	color.New(color.FgRed).Fprintf(n.Out, "  %v\n", err)
}

// MultiNotifier fans alerts out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Success(action Action, message string) {
	for _, n := range m {
		n.Success(action, message)
	}
}

func (m MultiNotifier) Failure(action Action, err error) {
	for _, n := range m {
		n.Failure(action, err)
	}
}

func successMessage(action Action) string {
	switch action {
	case ActionApprove:
		return "✅ Approval successful!"
	case ActionStake:
		return "✅ Staking successful!"
	case ActionUnstake:
		return "✅ Unstake successful!"
	case ActionClaim:
		return "🎉 Rewards claimed!"
	}
	return "✅ Done!"
}

func failureMessage(action Action) string {
	switch action {
	case ActionApprove:
		return "❌ Approval failed!"
	case ActionStake:
		return "❌ Staking failed!"
	case ActionUnstake:
		return "❌ Unstake failed!"
	case ActionClaim:
		return "❌ Claim failed!"
	}
	return "❌ Action failed!"
}
