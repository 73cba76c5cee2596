// Package console provides the interactive prompts the CLI uses to pick a
// release action or an LTS branch. The orchestration core only sees the
// Prompter interface; terminal rendering stays here.
package console

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/traincut/traincut/internal/errors"
)

// Prompter is the interactive-selection collaborator.
type Prompter interface {
	// Select asks the operator to choose one of options and returns the
	// chosen index.
	Select(title string, options []string) (int, error)

	// Confirm asks the operator a yes/no question.
	Confirm(title string) (bool, error)
}

// HuhPrompter implements Prompter using charmbracelet/huh forms.
type HuhPrompter struct{}

// NewHuhPrompter creates a HuhPrompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

// Select renders a single-select form over options.
func (p *HuhPrompter) Select(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no options to select from", errors.ErrInvalidInput)
	}

	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}

	var choice int
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(title).
			Options(opts...).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, errors.ErrCanceled
		}
		return 0, err
	}
	return choice, nil
}

// Confirm renders a yes/no form.
func (p *HuhPrompter) Confirm(title string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, errors.ErrCanceled
		}
		return false, err
	}
	return confirmed, nil
}
