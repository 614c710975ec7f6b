package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"personas/pkg/config"
	"personas/pkg/corpus"
	"personas/pkg/inference"
	"personas/pkg/persona"
	"personas/pkg/utils"
)

func main() {
	log.SetOutput(os.Stderr)
	os.Exit(execute(context.Background(), os.Args, os.Stdout))
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "personas",
		Usage:     "Generate UX personas for a website and print them as a JSON array",
		ArgsUsage: "<url> <count> <persona_type>",
		Description: `persona_type is "random" for personas unrelated to the site, or "potential"
for likely users of it. Reference personas are read from PERSONA_CORPUS.`,
		Writer:       stdout,
		HideHelp:     true,
		OnUsageError: usageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return generate(ctx, cmd, stdout)
		},
	}
}

// usageError hands parse failures back to execute instead of printing help, so stdout
// only ever carries JSON.
func usageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

// execute runs the command and reports any failure as {"error": ...} on stdout.
func execute(ctx context.Context, args []string, stdout io.Writer) int {
	if err := newCommand(stdout).Run(ctx, args); err != nil {
		_ = json.NewEncoder(stdout).Encode(utils.ErrJSON(err.Error()))
		return 1
	}
	return 0
}

func generate(ctx context.Context, cmd *cli.Command, stdout io.Writer) error {
	if cmd.Args().Len() < 3 {
		return errors.New("missing arguments, required: url count persona_type")
	}
	url := cmd.Args().Get(0)
	count, err := strconv.Atoi(cmd.Args().Get(1))
	if err != nil || count < 1 {
		return fmt.Errorf("count must be a positive integer, got %q", cmd.Args().Get(1))
	}
	mode := corpus.ParseMode(cmd.Args().Get(2))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.SetLogLevel(cfg.LogLevel)

	inf, err := inference.New(cfg)
	if err != nil {
		return err
	}

	loader := corpus.NewLoader(nil, cfg.CorpusTTL)
	gen := persona.New(inf, loader.Source(cfg.Corpus, 0), persona.Config{
		Model:        cfg.Model(),
		StrictSchema: cfg.StrictSchema,
	}, cfg.Rand())

	personas, err := gen.GenerateBatch(ctx, url, count, mode)
	if err != nil {
		return err
	}
	return json.NewEncoder(stdout).Encode(personas)
}
