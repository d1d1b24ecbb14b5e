package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var chineseNamer = display.Languages(xlanguage.SimplifiedChinese)

// Canonical returns the base language of raw in its shortest registered form
// (for example, "de" from "deu" or "de-AT"). Unknown but well-formed codes fall
// back to NormalizeCode.
func Canonical(raw string) string {
	code := NormalizeCode(raw)
	if code == "" {
		return ""
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return code
	}
	return base.String()
}

// DisplayName returns the English name of a language code.
func DisplayName(raw string) string {
	return nameWith(display.English.Languages(), raw)
}

// NativeName returns the name of a language in that language.
func NativeName(raw string) string {
	return nameWith(display.Self, raw)
}

// ChineseName returns the Simplified Chinese name of a language code.
func ChineseName(raw string) string {
	return nameWith(chineseNamer, raw)
}

func nameWith(namer display.Namer, raw string) string {
	code := NormalizeCode(raw)
	if code == "" {
		return strings.TrimSpace(raw)
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := strings.TrimSpace(namer.Name(tag)); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
