// Package runtime provides the execution context for vbranch commands: the
// engine, the logger, the repository config and root path shared by every
// command.
package runtime

import (
	"context"
	"fmt"
	"io"

	"vbranch.dev/vbranch/internal/config"
	"vbranch.dev/vbranch/internal/credentials"
	"vbranch.dev/vbranch/internal/engine"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/output"
	"vbranch.dev/vbranch/internal/state"
)

// Context provides access to engine and output for commands
type Context struct {
	context.Context
	Engine   engine.Engine
	Splog    *output.Splog
	Config   *config.RepoConfig
	RepoRoot string
}

// GetContext opens the repository containing dir and wires the engine to
// its config, state file and credential helper. Console output goes to out.
func GetContext(ctx context.Context, dir string, out io.Writer) (*Context, error) {
	repo, err := git.Open(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.GetRepoConfig(repo.Root())
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithConfig(out, cfg.LogFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	helper := credentials.NewHelper(repo.Runner(), credentials.TokenFromEnv(cfg.TokenEnvVar()), splog.Logger())
	eng, err := engine.NewEngine(engine.Options{
		Repo:        repo,
		Store:       state.NewStore(repo.GitDir()),
		Credentials: helper,
		Config:      cfg,
		Splog:       splog,
	})
	if err != nil {
		_ = splog.Close()
		return nil, err
	}

	return &Context{
		Context:  ctx,
		Engine:   eng,
		Splog:    splog,
		Config:   cfg,
		RepoRoot: repo.Root(),
	}, nil
}

// Close releases the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}
