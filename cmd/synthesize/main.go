package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"personas/pkg/config"
	"personas/pkg/corpus"
	"personas/pkg/inference"
	"personas/pkg/synth"
	"personas/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args, os.Stdout)
	stop()
	os.Exit(code)
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "synthesize",
		Usage: "Synthesize text for every persona of a corpus with an OpenAI-compatible endpoint",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "sample_size",
				Usage: "Number of personas to process; 0 processes the whole corpus",
				Value: 0,
			},
			&cli.StringFlag{
				Name:     "template",
				Usage:    "Prompt template: " + strings.Join(synth.Templates(), ", "),
				Required: true,
				Validator: func(s string) error {
					_, err := synth.ParseTemplate(s)
					return err
				},
			},
			&cli.StringFlag{
				Name:     "output_path",
				Usage:    "Path to the output JSONL file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Persona corpus file or URL (defaults to SYNTH_CORPUS)",
			},
		},
		Writer:   stdout,
		HideHelp: true,
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return err
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, stdout)
		},
	}
}

// execute runs the command and reports any failure as {"error": ...} on stdout.
func execute(ctx context.Context, args []string, stdout io.Writer) int {
	if err := newCommand(stdout).Run(ctx, args); err != nil {
		_ = json.NewEncoder(stdout).Encode(utils.ErrJSON(err.Error()))
		return 1
	}
	return 0
}

func run(ctx context.Context, cmd *cli.Command, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.SetLogLevel(cfg.LogLevel)

	tmpl, err := synth.ParseTemplate(cmd.String("template"))
	if err != nil {
		return err
	}
	if cmd.Int("sample_size") < 0 {
		return fmt.Errorf("sample_size must not be negative")
	}

	inf, err := inference.NewSynth(cfg)
	if err != nil {
		return err
	}
	log.Info("synthesis endpoint", "provider", cfg.SynthProvider, "url", inf.BaseURL(), "model", inf.Model())

	source := cmp.Or(cmd.String("corpus"), cfg.SynthCorpus)
	entries, err := corpus.Open(ctx, nil, source, cmd.Int("sample_size"))
	if err != nil {
		log.Warn("could not load persona corpus, continuing with an empty one", "source", source, "error", err)
		entries = nil
	}
	log.Info("Total number of input personas", "count", len(entries))

	path := cmd.String("output_path")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	sum, err := synth.New(inf, tmpl).Run(ctx, entries, w)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "Outputted the results to: %s\n", path)
	if sum.Failed > 0 {
		color.New(color.FgYellow).Fprintf(stdout, "%d of %d personas failed; their records carry the error text\n", sum.Failed, sum.Total)
	}
	return nil
}
