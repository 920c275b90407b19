package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/go-github/v72/github"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/cchalm/scm-folders/internal/config"
	"github.com/cchalm/scm-folders/internal/folder"
	"github.com/cchalm/scm-folders/internal/git"
	ghguards "github.com/cchalm/scm-folders/internal/github"
	"github.com/cchalm/scm-folders/internal/guard"
	"github.com/cchalm/scm-folders/internal/logging"
	"github.com/cchalm/scm-folders/internal/telemetry"
	"github.com/cchalm/scm-folders/internal/transport"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		log.Info().Msg("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal().Msg("Forcing shutdown")
	}()

	return ctx
}

func createGithubClient(cfg config.Config) (*github.Client, error) {
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.GitHubToken},
	)
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource,
			Base:   transport.WithRateLimiting(nil, cfg.RateLimitMaxWait, logging.Get("transport")),
		},
	}

	client := github.NewClient(httpClient)
	if cfg.GitHubAPIURL == "" {
		return client, nil
	}

	apiURL := cfg.GitHubAPIURL
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	client, err := client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL '%s': %w", cfg.GitHubAPIURL, err)
	}
	return client, nil
}

func createTelemetryProvider(ctx context.Context, cfg config.Config) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:      cfg.TelemetryEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     cfg.OTLPInsecure,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}

func shutdownTelemetry(provider *telemetry.Provider) {
	if err := provider.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to shut down telemetry")
	}
}

// components holds everything the commands need to run folder operations
type components struct {
	folders       *folder.Service
	preconditions *folder.Preconditions
}

func createComponents(cfg config.Config) (*components, error) {
	githubClient, err := createGithubClient(cfg)
	if err != nil {
		return nil, err
	}

	repositories := git.NewGithubRepositoryFactory(githubClient)
	permissions := ghguards.NewPushPermissionChecker(githubClient, ghguards.DefaultPermissionTTL)

	var guards []guard.Guard
	if len(cfg.ProtectedPaths) > 0 {
		guards = append(guards, guard.NewPathPrefixGuard(cfg.ProtectedPaths...))
	}
	if cfg.ProtectBranches {
		guards = append(guards, ghguards.NewProtectedBranchGuard(githubClient))
	}

	return &components{
		folders:       folder.NewService(repositories, permissions, guard.NewCheck(guards...), logging.Get("folder")),
		preconditions: folder.NewPreconditions(repositories, permissions, logging.Get("preconditions")),
	}, nil
}
