package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// NewDeployRenderer picks the text or JSON renderer for stdout
func NewDeployRenderer(cfg *config.RuntimeConfig) Renderer[*usecase.DeployResult] {
	if cfg.JSON {
		return NewDeployJSONRenderer(os.Stdout, cfg.Network)
	}
	return NewDeployTextRenderer(os.Stdout, cfg.Network)
}

// DeployTextRenderer prints the deployed address followed by a detail table
type DeployTextRenderer struct {
	out     io.Writer
	network *config.Network
}

// NewDeployTextRenderer creates a new text renderer
func NewDeployTextRenderer(out io.Writer, network *config.Network) *DeployTextRenderer {
	return &DeployTextRenderer{out: out, network: network}
}

// Render writes "<Name> deployed to: <address>" and the deployment details
func (r *DeployTextRenderer) Render(result *usecase.DeployResult) error {
	d := result.Deployment

	fmt.Fprintf(r.out, "%s deployed to: %s\n",
		color.New(color.FgGreen, color.Bold).Sprint(result.Contract.Name),
		color.New(color.FgCyan).Sprint(d.Address.Hex()),
	)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	labels := table.ColumnConfig{Number: 1, Align: text.AlignLeft}
	if !color.NoColor {
		labels.Colors = text.Colors{text.Faint}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		labels,
		{Number: 2, Align: text.AlignLeft},
	})

	if r.network != nil {
		t.AppendRow(table.Row{"Network", r.network.Name})
	}
	t.AppendRows([]table.Row{
		{"Status", cases.Title(language.English).String(string(d.State))},
		{"Chain ID", d.ChainID},
		{"Artifact", result.Contract.Key()},
		{"Deployer", d.Deployer.Hex()},
		{"Transaction", d.TxHash.Hex()},
		{"Nonce", d.Nonce},
		{"Block", d.BlockNumber},
		{"Gas Used", d.GasUsed},
	})

	fmt.Fprintln(r.out)
	t.Render()
	return nil
}

// DeployJSONRenderer writes the deployment as a single JSON document
type DeployJSONRenderer struct {
	out     io.Writer
	network *config.Network
}

// NewDeployJSONRenderer creates a new JSON renderer
func NewDeployJSONRenderer(out io.Writer, network *config.Network) *DeployJSONRenderer {
	return &DeployJSONRenderer{out: out, network: network}
}

type deployOutput struct {
	Contract     string `json:"contract"`
	Path         string `json:"path"`
	Address      string `json:"address"`
	Network      string `json:"network,omitempty"`
	ChainID      uint64 `json:"chainId"`
	Deployer     string `json:"deployer"`
	TxHash       string `json:"txHash"`
	Nonce        uint64 `json:"nonce"`
	BlockNumber  uint64 `json:"blockNumber"`
	GasUsed      uint64 `json:"gasUsed"`
	ArtifactPath string `json:"artifactPath"`
}

// Render writes the deployment as indented JSON
func (r *DeployJSONRenderer) Render(result *usecase.DeployResult) error {
	d := result.Deployment
	output := deployOutput{
		Contract:     result.Contract.Name,
		Path:         result.Contract.Path,
		Address:      d.Address.Hex(),
		ChainID:      d.ChainID,
		Deployer:     d.Deployer.Hex(),
		TxHash:       d.TxHash.Hex(),
		Nonce:        d.Nonce,
		BlockNumber:  d.BlockNumber,
		GasUsed:      d.GasUsed,
		ArtifactPath: result.Contract.ArtifactPath,
	}
	if r.network != nil {
		output.Network = r.network.Name
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}
