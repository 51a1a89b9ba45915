package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/configuration"
	"github.com/niexiaoning/deep-searcher/internal/mcpServer"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/urfave/cli/v2"
)

func main() {
	collectionFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Target collection, dropped and recreated before loading",
			Value:   config.DefaultCollectionName,
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Description stored with the collection",
			Value: config.DefaultCollectionDescription,
		},
	}

	app := &cli.App{
		Name:  "deep-searcher-loader",
		Usage: "Load local files and web pages into a vector collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file read before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Aliases: []string{"m"},
				Usage:   "Embedding model, overrides EMBEDDING_MODEL",
			},
			&cli.StringFlag{
				Name:  "vector-db",
				Usage: "Vector store (qdrant, local), overrides VECTOR_DB",
			},
		},
		// logs go to stderr so stdout stays free for results and the MCP transport
		Before: func(c *cli.Context) error {
			logger_i.InitWithWriter(os.Stderr)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "local",
				Usage:     "Load files or directories",
				ArgsUsage: "PATH [PATH...]",
				Flags:     collectionFlags,
				Action:    localCommand,
			},
			{
				Name:      "website",
				Usage:     "Fetch pages and load their text",
				ArgsUsage: "URL [URL...]",
				Flags:     collectionFlags,
				Action:    websiteCommand,
			},
			{
				Name:   "models",
				Usage:  "List embedding models with a known dimension",
				Action: modelsCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the loading tools over MCP stdio",
				Action: mcpCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	settings, err := config.Load(c.String("env-file"))
	if err != nil {
		return config.Settings{}, err
	}
	if m := c.String("embedding-model"); m != "" {
		settings.EmbeddingModel = m
	}
	if v := c.String("vector-db"); v != "" {
		settings.VectorDB = strings.ToLower(v)
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func buildServices(c *cli.Context) (context.Context, context.CancelFunc, *configuration.Services, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	services, err := configuration.Build(ctx, settings)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return ctx, cancel, services, nil
}

func localCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one path is required")
	}
	ctx, cancel, services, err := buildServices(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer services.Close()

	res, err := services.Pipeline.LoadFromLocalFiles(ctx, c.Args().Slice(), c.String("collection"), c.String("description"))
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}
	return printResult(res)
}

func websiteCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one url is required")
	}
	ctx, cancel, services, err := buildServices(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer services.Close()

	res, err := services.Pipeline.LoadFromWebsite(ctx, c.Args().Slice(), c.String("collection"), c.String("description"))
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}
	return printResult(res)
}

func modelsCommand(c *cli.Context) error {
	models := embedding.SupportedModels()
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "%-45s %d\n", name, models[name])
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	ctx, cancel, services, err := buildServices(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer services.Close()

	server := mcpServer.New(services.Pipeline, mcpServer.EmbeddingInfo{
		Model:               services.Embedder.Model(),
		Kind:                services.Embedder.Kind().String(),
		Dimension:           services.Embedder.Dimension(),
		MultiRepresentation: services.Embedder.IsMultiRepresentation(),
	})
	return mcpServer.Run(ctx, server)
}

func printResult(res ingest.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
