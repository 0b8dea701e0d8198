package promptutils

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// Prompter is the single seam through which the pipeline talks to the
// operator: MFA factor selection, passcodes, and the login password.
type Prompter interface {
	PromptForSelection(label string, items []string) (string, error)
	PromptForInput(label, defaultValue string) (string, error)
	PromptForPassword(label string) (string, error)
}

type RealPrompter struct{}

var ErrInterrupted = errors.New("operation interrupted")

func (p *RealPrompter) HandlePromptError(err error) error {
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			fmt.Println("\nReceived termination signal. Exiting.")
			return ErrInterrupted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func (p *RealPrompter) PromptForSelection(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, selected, err := prompt.Run()

	if err := p.HandlePromptError(err); err != nil {
		return "", err
	}

	return selected, nil
}

func (p *RealPrompter) PromptForInput(label, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}
	result, err := prompt.Run()

	if err := p.HandlePromptError(err); err != nil {
		return "", err
	}

	return result, nil
}

func (p *RealPrompter) PromptForPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	result, err := prompt.Run()

	if err := p.HandlePromptError(err); err != nil {
		return "", err
	}

	return result, nil
}

func NewPrompt() Prompter {
	return &RealPrompter{}
}
