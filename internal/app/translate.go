package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"horse.fit/mts/internal/cli"
	"horse.fit/mts/internal/language"
	"horse.fit/mts/internal/langdetect"
	"horse.fit/mts/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	from := fs.String("from", "auto", "Source language (ISO 639-1, or auto)")
	to := fs.String("to", "", "Target language (ISO 639-1)")
	modelsDir := fs.String("models-dir", "", "Models directory (overrides MTS_MODELS_PATH)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text, err := translateInput(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	targetLang := language.Canonical(*to)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--to is required and must be a valid language code")
		return 2
	}

	cfg, logger, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	rt, err := buildRuntime(context.Background(), cfg, logger, *modelsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load translation models: %v\n", err)
		return 1
	}
	defer rt.Close()

	sourceLang := strings.ToLower(strings.TrimSpace(*from))
	if sourceLang != "" && sourceLang != "auto" {
		sourceLang = language.Canonical(sourceLang)
	} else {
		sourceLang = langdetect.NewDetector(rt.service.Registry().SourceLanguages()).Detect(text)
		if sourceLang == "" {
			fmt.Fprintln(os.Stderr, "could not detect source language; pass --from")
			return 1
		}
		logger.Debug().Str("from", sourceLang).Msg("detected source language")
	}

	result, err := rt.service.Translate(sourceLang, targetLang, text)
	if err != nil {
		if errors.Is(err, translation.ErrUnsupportedPair) {
			fmt.Fprintf(os.Stderr, "Unsupported language pair %s -> %s\n", sourceLang, targetLang)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Translation failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stdout, result)
	return 0
}

// translateInput joins the positional arguments, or reads stdin when the only
// argument is "-".
func translateInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("translate requires the text to translate (or - for stdin)")
	}
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text := strings.TrimRight(string(raw), "\r\n")
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("stdin is empty")
		}
		return text, nil
	}
	return strings.Join(args, " "), nil
}
