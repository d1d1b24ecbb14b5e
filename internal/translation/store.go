package translation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"horse.fit/mts/internal/engine"
)

const (
	vocabSuffix        = ".spm"
	sourceVocabPrefix  = "srcvocab"
	targetVocabPrefix  = "trgvocab"
	shortlistSuffix    = ".s2t.bin"
	alphasWeightSuffix = ".intgemm.alphas.bin"
	int8WeightSuffix   = ".intgemm8.bin"
)

// MissingFilesPolicy decides what happens to a pair directory that lacks a
// weights or vocabulary file.
type MissingFilesPolicy string

const (
	// MissingFilesIgnore registers the pair with empty paths and says nothing.
	MissingFilesIgnore MissingFilesPolicy = "ignore"
	// MissingFilesWarn registers the pair and logs the missing files.
	MissingFilesWarn MissingFilesPolicy = "warn"
	// MissingFilesReject aborts startup.
	MissingFilesReject MissingFilesPolicy = "reject"
)

// ParseMissingFilesPolicy accepts ignore, warn or reject (case-insensitive).
// Blank input selects warn.
func ParseMissingFilesPolicy(raw string) (MissingFilesPolicy, error) {
	switch policy := MissingFilesPolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return MissingFilesWarn, nil
	case MissingFilesIgnore, MissingFilesWarn, MissingFilesReject:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown missing files policy %q (want ignore, warn or reject)", raw)
	}
}

// ModelLoader is the engine's one-time model constructor.
type ModelLoader interface {
	LoadModel(spec engine.ModelSpec) (engine.Model, error)
}

// ModelFiles are the files discovered in one pair directory. Absent files are
// empty strings.
type ModelFiles struct {
	Weights     string `yaml:"weights"`
	SourceVocab string `yaml:"source_vocab"`
	TargetVocab string `yaml:"target_vocab"`
	Shortlist   string `yaml:"shortlist,omitempty"`
}

// Missing names the required files that were not found.
func (f ModelFiles) Missing() []string {
	var missing []string
	if f.Weights == "" {
		missing = append(missing, "weights")
	}
	if f.SourceVocab == "" {
		missing = append(missing, "source vocab")
	}
	if f.TargetVocab == "" {
		missing = append(missing, "target vocab")
	}
	return missing
}

// PairDirectory is one discovered pair with its files and engine options.
type PairDirectory struct {
	Key    PairKey            `yaml:"pair"`
	Path   string             `yaml:"path"`
	Files  ModelFiles         `yaml:"files"`
	Config engine.ModelConfig `yaml:"config"`
}

// Spec converts the directory into the engine's load request.
func (d PairDirectory) Spec() engine.ModelSpec {
	source, target, _ := d.Key.Languages()
	return engine.ModelSpec{
		Name:   d.Key.String(),
		Source: source,
		Target: target,
		Config: d.Config,
	}
}

// LoadOptions controls LoadRegistry.
type LoadOptions struct {
	MissingFiles MissingFilesPolicy
	// Concurrency bounds parallel model construction; <= 1 loads sequentially.
	Concurrency int
	Logger      zerolog.Logger
}

// DiscoverModels scans dir once and returns one entry per pair directory.
// Hidden entries and plain files are skipped.
func DiscoverModels(dir string, logger zerolog.Logger) ([]PairDirectory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read models directory %s: %w", dir, err)
	}

	pairs := make([]PairDirectory, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() {
			logger.Debug().Str("entry", name).Msg("skipping non-directory entry in models directory")
			continue
		}

		base := filepath.Join(dir, name)
		files, err := discoverModelFiles(base)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, PairDirectory{
			Key:    PairKey(name),
			Path:   base,
			Files:  files,
			Config: engine.DefaultModelConfig().WithFiles(files.Weights, files.SourceVocab, files.TargetVocab, files.Shortlist),
		})
	}
	return pairs, nil
}

func discoverModelFiles(dir string) (ModelFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ModelFiles{}, fmt.Errorf("read pair directory %s: %w", dir, err)
	}

	var files ModelFiles
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		switch {
		case strings.HasSuffix(name, vocabSuffix):
			switch {
			case strings.HasPrefix(name, sourceVocabPrefix):
				files.SourceVocab = path
			case strings.HasPrefix(name, targetVocabPrefix):
				files.TargetVocab = path
			default:
				files.SourceVocab = path
				files.TargetVocab = path
			}
		case strings.HasSuffix(name, alphasWeightSuffix), strings.HasSuffix(name, int8WeightSuffix):
			files.Weights = path
		case strings.HasSuffix(name, shortlistSuffix):
			files.Shortlist = path
		}
	}
	return files, nil
}

// LoadRegistry discovers every pair under dir, constructs its model through
// loader and returns the immutable registry. Any load failure aborts the
// whole load; an empty result is ErrEmptyRegistry.
func LoadRegistry(ctx context.Context, dir string, loader ModelLoader, opts LoadOptions) (*Registry, error) {
	if loader == nil {
		return nil, fmt.Errorf("model loader is nil")
	}
	policy := opts.MissingFiles
	if policy == "" {
		policy = MissingFilesWarn
	}
	logger := opts.Logger

	pairs, err := DiscoverModels(dir, logger)
	if err != nil {
		return nil, err
	}

	for _, pair := range pairs {
		missing := pair.Files.Missing()
		if len(missing) == 0 {
			continue
		}
		switch policy {
		case MissingFilesReject:
			return nil, fmt.Errorf("pair %s: %w: %s", pair.Key, ErrMissingModelFiles, strings.Join(missing, ", "))
		case MissingFilesWarn:
			logger.Warn().
				Str("pair", pair.Key.String()).
				Strs("missing", missing).
				Msg("pair directory is incomplete, registering anyway")
		}
	}

	var (
		mu     sync.Mutex
		models = make(map[PairKey]engine.Model, len(pairs))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, opts.Concurrency))
	for _, pair := range pairs {
		pair := pair
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			logger.Debug().Str("pair", pair.Key.String()).Msg("creating translation model")
			model, err := loader.LoadModel(pair.Spec())
			if err != nil {
				return fmt.Errorf("pair %s: %w", pair.Key, err)
			}
			mu.Lock()
			models[pair.Key] = model
			mu.Unlock()
			logger.Info().Str("pair", pair.Key.String()).Msg("model loaded")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	registry, err := NewRegistry(models)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, dir)
	}
	return registry, nil
}
