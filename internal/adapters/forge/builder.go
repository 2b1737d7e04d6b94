package forge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// Builder runs forge build in the project root
type Builder struct {
	log         *slog.Logger
	projectRoot string
	profile     string
	binary      string
	stream      bool      // copy forge's own output through a pty
	out         io.Writer // destination for streamed output
}

// NewBuilder creates a forge builder for the configured project
func NewBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return &Builder{
		log:         log.With("component", "ForgeBuilder"),
		projectRoot: cfg.ProjectRoot,
		profile:     cfg.Namespace,
		binary:      "forge",
		stream:      cfg.Debug && !cfg.JSON,
		out:         os.Stderr,
	}
}

// Build compiles the project. Output is only surfaced when the build fails,
// unless debug streaming is on.
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()
	b.log.Debug("running forge build", "dir", b.projectRoot, "profile", b.profile)

	cmd := exec.CommandContext(ctx, b.binary, "build")
	cmd.Dir = b.projectRoot
	cmd.Env = b.env()

	if b.stream {
		if err := b.runStreaming(cmd); err != nil {
			return fmt.Errorf("forge build failed: %w", err)
		}
		b.log.Debug("forge build completed", "duration", time.Since(start))
		return nil
	}

	output, err := cmd.CombinedOutput()
	duration := time.Since(start)
	if err != nil {
		b.log.Debug("forge build failed", "error", err, "output", string(output), "duration", duration)
		return fmt.Errorf("forge build failed: %w\nOutput: %s", err, string(output))
	}

	b.log.Debug("forge build completed", "duration", duration)
	return nil
}

// runStreaming attaches forge to a pty so its colored output survives
func (b *Builder) runStreaming(cmd *exec.Cmd) error {
	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	// Reading a closed pty ends with EIO on linux
	_, _ = io.Copy(b.out, ptyFile)
	return cmd.Wait()
}

func (b *Builder) env() []string {
	env := os.Environ()
	if b.profile != "" && b.profile != "default" {
		env = append(env, "FOUNDRY_PROFILE="+b.profile)
	}
	return env
}

// Ensure the builder implements the port
var _ usecase.ContractBuilder = (*Builder)(nil)
