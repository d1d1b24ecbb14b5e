package langdetect

import (
	"sort"
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth running detection on.
const minLetters = 6

// Detector guesses the source language of a text among a fixed set of
// candidate ISO 639-1 codes.
type Detector struct {
	candidates []string
	detector   lingua.LanguageDetector
}

// NewDetector builds a detector restricted to codes. Codes lingua does not
// know are dropped. With a single known code detection always answers it;
// with none it never answers.
func NewDetector(codes []string) *Detector {
	byCode := make(map[string]lingua.Language, len(codes))
	for _, code := range codes {
		normalized := strings.ToLower(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		if language, ok := linguaLanguage(normalized); ok {
			byCode[normalized] = language
		}
	}

	candidates := make([]string, 0, len(byCode))
	languages := make([]lingua.Language, 0, len(byCode))
	for code, language := range byCode {
		candidates = append(candidates, code)
		languages = append(languages, language)
	}
	sort.Strings(candidates)

	d := &Detector{candidates: candidates}
	if len(languages) >= 2 {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithPreloadedLanguageModels().
			Build()
	}
	return d
}

// Candidates lists the codes the detector chooses from.
func (d *Detector) Candidates() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.candidates))
	copy(out, d.candidates)
	return out
}

// Detect returns the ISO 639-1 code of text, or "" when the sample is too
// short or ambiguous.
func (d *Detector) Detect(text string) string {
	if d == nil || len(d.candidates) == 0 {
		return ""
	}

	sample := strings.TrimSpace(text)
	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	if d.detector == nil {
		return d.candidates[0]
	}

	language, exists := d.detector.DetectLanguageOf(sample)
	if !exists {
		return ""
	}
	return isoCode(language)
}

func linguaLanguage(code string) (lingua.Language, bool) {
	for _, language := range lingua.AllLanguages() {
		if isoCode(language) == code {
			return language, true
		}
	}
	return lingua.Unknown, false
}

func isoCode(language lingua.Language) string {
	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}
