package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"horse.fit/mts/internal/cli"
	"horse.fit/mts/internal/config"
	"horse.fit/mts/internal/translation"
)

const (
	outputFormatTable = "table"
	outputFormatYAML  = "yaml"
)

func runModels(args []string) int {
	return modelsCommand(args, os.Stdout)
}

func modelsCommand(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	modelsDir := fs.String("models-dir", "", "Models directory (overrides MTS_MODELS_PATH)")
	formatRaw := fs.String("format", outputFormatYAML, "Output format: yaml or table")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	format, err := parseOutputFormat(*formatRaw, outputFormatYAML)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	dir := strings.TrimSpace(*modelsDir)
	if dir == "" {
		if envLoader != nil {
			_, _ = envLoader.Load()
		}
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		var warnings []string
		dir, warnings = cfg.ResolveModelsPath()
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	pairs, err := translation.DiscoverModels(dir, zerolog.Nop())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(pairs) == 0 {
		fmt.Fprintf(os.Stderr, "%v: %s\n", translation.ErrEmptyRegistry, dir)
		return 1
	}

	if err := writeModels(out, format, pairs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to print models: %v\n", err)
		return 1
	}
	return 0
}

func writeModels(out io.Writer, format string, pairs []translation.PairDirectory) error {
	if format == outputFormatYAML {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(pairs); err != nil {
			return err
		}
		return encoder.Close()
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tSOURCE\tTARGET\tMISSING\tPATH")
	for _, pair := range pairs {
		source, target, _ := pair.Key.Languages()
		missing := strings.Join(pair.Files.Missing(), ",")
		if missing == "" {
			missing = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", pair.Key, source, target, missing, pair.Path)
	}
	return tw.Flush()
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be yaml or table")
	}
}
