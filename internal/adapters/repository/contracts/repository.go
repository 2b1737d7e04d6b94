package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// Repository discovers and indexes Foundry artifacts
type Repository struct {
	projectRoot   string
	outDir        string
	builder       usecase.ContractBuilder       // nil when building is disabled
	contracts     map[string]*models.Contract   // key: "path:contractName"
	contractNames map[string][]*models.Contract // key: contract name
	log           *slog.Logger
	mu            sync.RWMutex
	indexed       bool
}

// NewRepository creates a repository for the configured project and profile
func NewRepository(cfg *config.RuntimeConfig, builder usecase.ContractBuilder, log *slog.Logger) *Repository {
	if cfg.SkipBuild {
		builder = nil
	}
	return newRepository(cfg.ProjectRoot, cfg.OutDir(), builder, log)
}

func newRepository(projectRoot, outDir string, builder usecase.ContractBuilder, log *slog.Logger) *Repository {
	return &Repository{
		projectRoot:   projectRoot,
		outDir:        outDir,
		builder:       builder,
		log:           log.With("component", "ContractRepository"),
		contracts:     make(map[string]*models.Contract),
		contractNames: make(map[string][]*models.Contract),
	}
}

// Index builds the project when configured to and walks the artifact directory once
func (r *Repository) Index(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	if r.builder != nil {
		if err := r.builder.Build(ctx); err != nil {
			return fmt.Errorf("failed to build contracts: %w", err)
		}
	}

	outDir := r.outDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(r.projectRoot, outDir)
	}
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		return fmt.Errorf("artifact directory %s not found (run forge build first)", outDir)
	}

	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		return r.processArtifact(path)
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts: %w", err)
	}

	r.log.Debug("indexed artifacts", "dir", outDir, "contracts", len(r.contracts))
	r.indexed = true
	return nil
}

// processArtifact adds a single artifact file to the index
func (r *Repository) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		// Not every JSON file under out/ is an artifact
		r.log.Debug("skipping non-artifact json", "path", artifactPath, "error", err)
		return nil
	}

	if !artifact.HasBytecode() {
		return nil
	}

	sourceName, contractName := artifact.CompilationTarget()
	if contractName == "" || sourceName == "" {
		return nil
	}

	relArtifactPath, err := filepath.Rel(r.projectRoot, artifactPath)
	if err != nil {
		relArtifactPath = artifactPath
	}

	info := &models.Contract{
		Name:         contractName,
		Path:         sourceName,
		ArtifactPath: relArtifactPath,
		Artifact:     &artifact,
	}

	// The same contract can appear once per compiler profile; first one wins
	if _, exists := r.contracts[info.Key()]; exists {
		return nil
	}
	r.contracts[info.Key()] = info
	r.contractNames[info.Name] = append(r.contractNames[info.Name], info)

	return nil
}

// FindContracts returns the artifacts matching "Name" or "path:Name"
func (r *Repository) FindContracts(ctx context.Context, ref string) ([]*models.Contract, error) {
	if err := r.Index(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.Contains(ref, ":") {
		if contract, ok := r.contracts[ref]; ok {
			return []*models.Contract{contract}, nil
		}
		return nil, nil
	}

	matches := slices.Clone(r.contractNames[ref])
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

// ContractNames lists every indexed contract name, sorted
func (r *Repository) ContractNames(ctx context.Context) ([]string, error) {
	if err := r.Index(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.contractNames)
	sort.Strings(names)
	return names, nil
}

// Ensure the repository implements the port
var _ usecase.ArtifactStore = (*Repository)(nil)
