package cmd

import (
	"path/filepath"

	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/config"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/promptbuild"
	"github.com/kayz/promptblocks/internal/workspace"
)

// runtime is the object graph every mode shares: one workspace over one
// builder, client and optional store.
type runtime struct {
	cfg     *config.Config
	builder *promptbuild.Builder
	client  *generation.Client
	store   *persist.Store
	ws      *workspace.Workspace
}

type runtimeOptions struct {
	seed      bool
	withStore bool
	// recordHistory stores every resolved generation; it needs withStore.
	recordHistory bool
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if root == "" {
		root = "."
	}
	return filepath.Join(root, p)
}

func loadRegistry(cfg *config.Config) (*blocks.Registry, error) {
	if cfg.PromptBuild.RegistryFile == "" {
		return blocks.DefaultRegistry(), nil
	}
	return blocks.LoadRegistry(resolvePath(cfg.PromptBuild.RootDir, cfg.PromptBuild.RegistryFile))
}

func newRuntime(cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{
		cfg:     cfg,
		builder: promptbuild.NewBuilder(cfg.PromptBuild, registry, cfg.Generation.Preamble),
	}

	if opts.withStore && cfg.PromptBuild.SQLitePath != "" {
		rt.store, err = persist.NewStore(resolvePath(cfg.PromptBuild.RootDir, cfg.PromptBuild.SQLitePath))
		if err != nil {
			return nil, err
		}
	}

	provider, err := generation.NewProvider(cfg.Generation)
	if err != nil {
		rt.close()
		return nil, err
	}
	if cfg.Generation.ResolveAPIKey() == "" {
		logger.Warn("No API key configured for %s; generation requests will fail", provider.Name())
	}

	clientOpts := []generation.Option{generation.WithTimeout(cfg.Generation.Timeout)}
	var wsOpts []workspace.Option
	if rt.store != nil {
		wsOpts = append(wsOpts, workspace.WithStore(rt.store))
		if opts.recordHistory {
			clientOpts = append(clientOpts, generation.WithResultHook(rt.store.GenerationHook(provider.Name())))
		}
	}
	if opts.seed {
		wsOpts = append(wsOpts, workspace.WithSeed())
	}

	rt.client = generation.NewClient(provider, clientOpts...)
	rt.ws = workspace.New(rt.builder, rt.client, wsOpts...)
	return rt, nil
}

func (rt *runtime) close() {
	if rt.client != nil {
		rt.client.Close()
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	}
}
