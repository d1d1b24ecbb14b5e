package translation

import (
	"sort"

	"horse.fit/mts/internal/language"
)

type LanguageOption struct {
	Code    string   `json:"code"`
	Label   string   `json:"label"`
	Native  string   `json:"native,omitempty"`
	// Source and Target report whether a model reads or writes the language.
	Source  bool     `json:"source"`
	Target  bool     `json:"target"`
	Targets []string `json:"targets"`
}

// PairInfo describes one registered pair for capability listings.
type PairInfo struct {
	Pair   string `json:"pair"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

func DescribePairs(pairs []PairKey) []PairInfo {
	items := make([]PairInfo, 0, len(pairs))
	for _, key := range pairs {
		source, target, _ := key.Languages()
		items = append(items, PairInfo{
			Pair:   key.String(),
			Source: source,
			Target: target,
		})
	}
	return items
}

// LanguageOptions lists every language that appears in the registry together
// with the targets reachable from it, directly or through BridgeLanguage.
func LanguageOptions(registry *Registry) []LanguageOption {
	if registry == nil {
		return nil
	}

	sources := map[string]bool{}
	targets := map[string]bool{}
	known := map[string]struct{}{}
	for _, code := range registry.SourceLanguages() {
		sources[code] = true
		known[code] = struct{}{}
	}
	for _, code := range registry.TargetLanguages() {
		targets[code] = true
		known[code] = struct{}{}
	}

	codes := make([]string, 0, len(known))
	for code := range known {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	router := NewRouter(registry)
	options := make([]LanguageOption, 0, len(codes))
	for _, from := range codes {
		reachable := make([]string, 0, len(codes))
		for _, to := range codes {
			if router.IsSupported(from, to) {
				reachable = append(reachable, to)
			}
		}
		options = append(options, LanguageOption{
			Code:    from,
			Label:   language.DisplayName(from),
			Native:  language.NativeName(from),
			Source:  sources[from],
			Target:  targets[from],
			Targets: reachable,
		})
	}
	return options
}
