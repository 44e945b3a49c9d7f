// Package wizard prompts for missing input when running on a terminal.
package wizard

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt is needed but no terminal is attached.
var ErrNotInteractive = errors.New("input required but not running in a terminal")

// Credentials holds a username and password entered by the user.
type Credentials struct {
	Username string
	Password string
}

// Complete returns true if both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// IsTerminal returns true if stdin and stdout are terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive prompts for input when allowed and possible.
type Interactive struct {
	enabled  bool
	terminal func() bool
	run      func(*huh.Form) error
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled:  true,
		terminal: IsTerminal,
		run:      func(f *huh.Form) error { return f.Run() },
	}
}

// SetEnabled enables or disables prompting.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// CanInteract returns true if prompts may be shown.
func (i *Interactive) CanInteract() bool {
	return i.enabled && i.terminal()
}

// PromptCredentials asks for whichever of username and password is missing.
func (i *Interactive) PromptCredentials(c Credentials) (Credentials, error) {
	if c.Complete() {
		return c, nil
	}
	if !i.CanInteract() {
		return c, ErrNotInteractive
	}

	var fields []huh.Field
	if c.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Validate(required("username")).
			Value(&c.Username))
	}
	if c.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required("password")).
			Value(&c.Password))
	}

	if err := i.run(huh.NewForm(huh.NewGroup(fields...))); err != nil {
		return c, err
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, nil
}

// Confirm asks a yes/no question. Without a terminal it returns def.
func (i *Interactive) Confirm(title string, def bool) (bool, error) {
	if !i.CanInteract() {
		return def, nil
	}

	answer := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	))
	if err := i.run(form); err != nil {
		return false, err
	}
	return answer, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
