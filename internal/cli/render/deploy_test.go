package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

func confirmedResult(t *testing.T) *usecase.DeployResult {
	t.Helper()
	d := models.NewDeployment("KYCVerification")
	require.NoError(t, d.MarkSubmitted(models.Submission{
		TxHash:           common.HexToHash("0xabc1"),
		Nonce:            4,
		ChainID:          31337,
		Deployer:         common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		PredictedAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	}))
	require.NoError(t, d.MarkConfirmed(models.Confirmation{
		Address:     common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		BlockNumber: 12,
		GasUsed:     345678,
	}))

	return &usecase.DeployResult{
		Contract: &models.Contract{
			Name:         "KYCVerification",
			Path:         "src/KYCVerification.sol",
			ArtifactPath: "out/KYCVerification.sol/KYCVerification.json",
		},
		Deployment: d,
	}
}

var localhost = &config.Network{Name: "localhost", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"}

func TestDeployTextRenderer(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	require.NoError(t, NewDeployTextRenderer(&buf, localhost).Render(confirmedResult(t)))

	out := buf.String()
	first, _, _ := strings.Cut(out, "\n")
	assert.Equal(t, "KYCVerification deployed to: 0x5FbDB2315678afecb367f032d93F642f64180aa3", first)
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, "Confirmed")
	assert.Contains(t, out, "31337")
	assert.Contains(t, out, "src/KYCVerification.sol:KYCVerification")
	assert.Contains(t, out, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out, "345678")
	assert.NotContains(t, out, "\x1b[", "no escape sequences when color is disabled")
}

func TestDeployJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeployJSONRenderer(&buf, localhost).Render(confirmedResult(t)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "KYCVerification", got["contract"])
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", got["address"])
	assert.Equal(t, "localhost", got["network"])
	assert.Equal(t, float64(31337), got["chainId"])
	assert.Equal(t, float64(4), got["nonce"])
	assert.Equal(t, float64(12), got["blockNumber"])
	assert.Equal(t, "out/KYCVerification.sol/KYCVerification.json", got["artifactPath"])
}
