package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract is a compiled contract blueprint discovered in the artifact store
type Contract struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Artifact     *Artifact `json:"artifact,omitempty"`
}

// Key returns the fully qualified "path:Name" reference
func (c *Contract) Key() string {
	return fmt.Sprintf("%s:%s", c.Path, c.Name)
}

// CreationCode decodes the artifact's creation bytecode.
// Unlinked library placeholders make the bytecode undecodable, so they are
// reported separately and before decoding.
func (c *Contract) CreationCode() ([]byte, error) {
	if c.Artifact == nil {
		return nil, fmt.Errorf("contract %s has no artifact", c.Name)
	}
	object := c.Artifact.Bytecode.Object
	if object == "" || object == "0x" {
		return nil, fmt.Errorf("contract %s has no creation bytecode (abstract contract or interface?)", c.Name)
	}
	if libs := c.Artifact.UnlinkedLibraries(); len(libs) > 0 {
		return nil, fmt.Errorf("contract %s requires linking libraries: %s", c.Name, strings.Join(libs, ", "))
	}
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	code, err := hexutil.Decode(object)
	if err != nil {
		return nil, fmt.Errorf("contract %s has malformed bytecode: %w", c.Name, err)
	}
	return code, nil
}

// ParsedABI parses the artifact ABI
func (c *Contract) ParsedABI() (*abi.ABI, error) {
	if c.Artifact == nil || len(c.Artifact.ABI) == 0 {
		return &abi.ABI{}, nil
	}
	parsed, err := abi.JSON(strings.NewReader(string(c.Artifact.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", c.Name, err)
	}
	return &parsed, nil
}

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object         string                                   `json:"object"`
	SourceMap      string                                   `json:"sourceMap"`
	LinkReferences map[string]map[string][]LinkReferenceSpan `json:"linkReferences"`
}

// LinkReferenceSpan is a placeholder location for a library address
type LinkReferenceSpan struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Artifact represents a Foundry compilation artifact
type Artifact struct {
	ABI               json.RawMessage   `json:"abi"`
	Bytecode          BytecodeObject    `json:"bytecode"`
	DeployedBytecode  BytecodeObject    `json:"deployedBytecode"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers"`
	Metadata          ArtifactMetadata  `json:"metadata"`
}

// UnlinkedLibraries returns "file:Library" for every link reference in the creation code
func (a *Artifact) UnlinkedLibraries() []string {
	var libs []string
	for file, refs := range a.Bytecode.LinkReferences {
		for lib := range refs {
			libs = append(libs, fmt.Sprintf("%s:%s", file, lib))
		}
	}
	sort.Strings(libs)
	return libs
}

// HasBytecode reports whether the artifact carries creation code at all
func (a *Artifact) HasBytecode() bool {
	return a.Bytecode.Object != "" && a.Bytecode.Object != "0x"
}

// CompilationTarget returns the source path and contract name the artifact was compiled for
func (a *Artifact) CompilationTarget() (source string, name string) {
	for s, n := range a.Metadata.Settings.CompilationTarget {
		return s, n
	}
	return "", ""
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}
