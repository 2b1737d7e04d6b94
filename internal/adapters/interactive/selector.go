package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// Selector lets the user disambiguate contracts that share a name
type Selector struct {
	config *config.RuntimeConfig
}

// NewSelector creates a new selector
func NewSelector(cfg *config.RuntimeConfig) *Selector {
	return &Selector{config: cfg}
}

// SelectContract prompts for one of the given contracts
func (s *Selector) SelectContract(ctx context.Context, contracts []*models.Contract, prompt string) (*models.Contract, error) {
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(contracts) == 0 {
		return nil, fmt.Errorf("no contracts provided for selection")
	}
	if len(contracts) == 1 {
		return contracts[0], nil
	}

	options := formatContractOptions(contracts)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return contracts[index], nil
}

// formatContractOptions renders "Name (path)" with the artifact it came from
func formatContractOptions(contracts []*models.Contract) []string {
	options := make([]string, len(contracts))
	for i, contract := range contracts {
		name := color.New(color.FgWhite, color.Bold).Sprint(contract.Name)
		path := color.New(color.FgBlue).Sprint(strings.TrimPrefix(contract.Path, "src/"))

		var compiler string
		if contract.Artifact != nil && contract.Artifact.Metadata.Compiler.Version != "" {
			compiler = color.New(color.Faint).Sprintf(" solc %s", contract.Artifact.Metadata.Compiler.Version)
		}

		options[i] = fmt.Sprintf("%s (%s)%s", name, path, compiler)
	}
	return options
}

// createFuzzySearchFunc matches by substring first, then fuzzily
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the selector implements the port
var _ usecase.ContractSelector = (*Selector)(nil)
