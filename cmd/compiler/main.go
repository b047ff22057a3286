package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"voiceki.app/catalog/common/id"
	"voiceki.app/catalog/common/llm"
	"voiceki.app/catalog/common/logger"
	"voiceki.app/catalog/common/otel"
	"voiceki.app/catalog/core/config"
	"voiceki.app/catalog/internal/compiler"
	"voiceki.app/catalog/internal/extract"
	"voiceki.app/catalog/internal/flow"
	"voiceki.app/catalog/internal/protocol"
)

func main() {
	outPath := flag.String("o", "", "write the catalog to this file instead of stdout")
	kbPath := flag.String("kb", "", "write the knowledge base to this file when non-empty")
	policyLevel := flag.String("policy-level", "", "override CATALOG_POLICY_LEVEL (basic, standard, advanced)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <protocol.json>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%s\n", banner)
	logger.Setup(cfg)

	slog.InfoContext(ctx, "catalog compiler starting",
		"env", cfg.Env,
		"policy_level", cfg.Compile.PolicyLevel)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	if telemetry != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				slog.ErrorContext(shutdownCtx, "telemetry shutdown error", "error", err)
			}
		}()
	}

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	primary := buildClient(ctx, cfg.PrimaryLLM, "primary")
	secondary := buildClient(ctx, cfg.SecondaryLLM, "secondary")

	proto, err := loadProtocol(flag.Arg(0))
	if err != nil {
		slog.ErrorContext(ctx, "failed to load protocol", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}

	extractor := extract.New(primary, secondary, extract.Options{
		MaxTokens:   cfg.PrimaryLLM.MaxTokens,
		MaxParallel: cfg.Compile.MaxParallelCalls,
	})
	c := compiler.New(extractor, &flow.PassThrough{Threshold: cfg.Compile.FlowThreshold})

	level := cfg.Compile.PolicyLevel
	if *policyLevel != "" {
		level = *policyLevel
	}

	out, err := c.Compile(ctx, proto, compiler.Context{PolicyLevel: level})
	if err != nil {
		slog.ErrorContext(ctx, "compilation failed", "protocol_id", proto.ID, "error", err)
		os.Exit(1)
	}

	if err := writeJSON(*outPath, out.Catalog); err != nil {
		slog.ErrorContext(ctx, "failed to write catalog", "error", err)
		os.Exit(1)
	}
	if *kbPath != "" && !out.Knowledge.Empty() {
		if err := writeJSON(*kbPath, out.Knowledge); err != nil {
			slog.ErrorContext(ctx, "failed to write knowledge base", "error", err)
			os.Exit(1)
		}
	}

	slog.InfoContext(ctx, "compilation complete",
		"protocol_id", proto.ID,
		"questions", len(out.Catalog.Questions),
		"run_id", out.Catalog.Meta.RunID)
}

// buildClient returns nil when the config slot is not filled in; the
// extractor treats a nil client as an absent provider.
func buildClient(ctx context.Context, cfg config.LLMConfig, role string) llm.Client {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "llm provider not configured", "role", role)
		return nil
	}
	client, err := llm.New(llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	})
	if err != nil {
		slog.WarnContext(ctx, "skipping misconfigured llm provider", "role", role, "error", err)
		return nil
	}
	slog.InfoContext(ctx, "llm provider ready", "role", role, "provider", cfg.Provider, "model", client.Model())
	return client
}

func loadProtocol(path string) (*protocol.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return protocol.Parse(data)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

const banner = `
 ██████╗ █████╗ ████████╗ █████╗ ██╗      ██████╗  ██████╗
██╔════╝██╔══██╗╚══██╔══╝██╔══██╗██║     ██╔═══██╗██╔════╝
██║     ███████║   ██║   ███████║██║     ██║   ██║██║  ███╗
██║     ██╔══██║   ██║   ██╔══██║██║     ██║   ██║██║   ██║
╚██████╗██║  ██║   ██║   ██║  ██║███████╗╚██████╔╝╚██████╔╝
 ╚═════╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝ ╚═════╝  ╚═════╝
`
