package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractCreationCode(t *testing.T) {
	tests := []struct {
		name     string
		artifact *Artifact
		want     []byte
		wantErr  string
	}{
		{
			name:     "prefixed bytecode",
			artifact: &Artifact{Bytecode: BytecodeObject{Object: "0x6001600c"}},
			want:     []byte{0x60, 0x01, 0x60, 0x0c},
		},
		{
			name:     "unprefixed bytecode",
			artifact: &Artifact{Bytecode: BytecodeObject{Object: "6001"}},
			want:     []byte{0x60, 0x01},
		},
		{
			name:     "no artifact",
			artifact: nil,
			wantErr:  "has no artifact",
		},
		{
			name:     "empty bytecode",
			artifact: &Artifact{Bytecode: BytecodeObject{Object: "0x"}},
			wantErr:  "no creation bytecode",
		},
		{
			name: "unlinked library",
			artifact: &Artifact{Bytecode: BytecodeObject{
				Object: "0x73__$1234$__",
				LinkReferences: map[string]map[string][]LinkReferenceSpan{
					"src/Lib.sol": {"Lib": {{Start: 1, Length: 20}}},
				},
			}},
			wantErr: "requires linking libraries: src/Lib.sol:Lib",
		},
		{
			name:     "malformed hex",
			artifact: &Artifact{Bytecode: BytecodeObject{Object: "0xzz"}},
			wantErr:  "malformed bytecode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contract{Name: "Sample", Path: "src/Sample.sol", Artifact: tt.artifact}
			code, err := c.CreationCode()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestContractParsedABI(t *testing.T) {
	raw := `[{"type":"constructor","inputs":[{"name":"owner","type":"address"}],"stateMutability":"nonpayable"}]`
	c := &Contract{Name: "Owned", Artifact: &Artifact{ABI: json.RawMessage(raw)}}

	parsed, err := c.ParsedABI()
	require.NoError(t, err)
	assert.Len(t, parsed.Constructor.Inputs, 1)

	empty := &Contract{Name: "Bare", Artifact: &Artifact{}}
	parsed, err = empty.ParsedABI()
	require.NoError(t, err)
	assert.Empty(t, parsed.Constructor.Inputs)
}

func TestArtifactCompilationTarget(t *testing.T) {
	var a Artifact
	require.NoError(t, json.Unmarshal([]byte(`{
		"bytecode": {"object": "0x00"},
		"metadata": {"settings": {"compilationTarget": {"src/KYCVerification.sol": "KYCVerification"}}}
	}`), &a))

	source, name := a.CompilationTarget()
	assert.Equal(t, "src/KYCVerification.sol", source)
	assert.Equal(t, "KYCVerification", name)
	assert.True(t, a.HasBytecode())
	assert.Empty(t, a.UnlinkedLibraries())
}
