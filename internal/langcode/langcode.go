// Package langcode maps detected language codes to the codes the speech
// provider understands, and carries the supported-language catalog served
// by the translate-langs endpoint.
//
// The mapping is a plain value (not package state) so tests and callers
// can construct their own, and it can be replaced wholesale from a YAML
// file at startup.
package langcode

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Table resolves a detected language code to a speech-provider code.
type Table struct {
	// mappings are exact-match overrides, keyed by lowercase code.
	mappings map[string]string

	// supported is the set of base codes the speech provider accepts.
	supported map[string]struct{}
}

// Normalize resolves code to a speech-provider code. Lookup order: exact
// entry in the mapping table; otherwise the base segment before the first
// "-" when the provider supports it; otherwise "en".
func (t *Table) Normalize(code string) string {
	lang := strings.ToLower(code)
	if mapped, ok := t.mappings[lang]; ok {
		return mapped
	}
	base, _, _ := strings.Cut(lang, "-")
	if _, ok := t.supported[base]; ok {
		return base
	}
	return "en"
}

// Default returns the built-in table.
func Default() *Table {
	return &Table{
		mappings: map[string]string{
			"en":    "en",
			"hi":    "hi",
			"es":    "es",
			"fr":    "fr",
			"de":    "de",
			"bn":    "bn",
			"bn-bd": "bn",
			"zh-cn": "zh-CN",
			"zh-tw": "zh-TW",
			"pt":    "pt",
			"pt-br": "pt",
			"ru":    "ru",
			"ar":    "ar",
			"ja":    "ja",
			"ko":    "ko",
			"it":    "it",
			"ta":    "ta",
			"te":    "te",
			"ml":    "ml",
			"gu":    "gu",
			"kn":    "kn",
			"mr":    "mr",
			"ur":    "ur",
		},
		supported: setOf(
			"af", "ar", "bg", "bn", "bs", "ca", "cs", "cy", "da", "de",
			"el", "en", "eo", "es", "et", "fi", "fr", "gu", "hi", "hr",
			"hu", "id", "is", "it", "iw", "ja", "jw", "km", "kn", "ko",
			"la", "lv", "ml", "mr", "ms", "my", "ne", "nl", "no", "pl",
			"pt", "ro", "ru", "si", "sk", "sq", "sr", "su", "sv", "sw",
			"ta", "te", "th", "tl", "tr", "uk", "ur", "vi",
		),
	}
}

// tableFile is the on-disk shape of a replacement table.
type tableFile struct {
	Mappings  map[string]string `yaml:"mappings"`
	Supported []string          `yaml:"supported"`
}

// Load reads a replacement table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading language table: %w", err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing language table %s: %w", path, err)
	}

	t := &Table{
		mappings:  make(map[string]string, len(f.Mappings)),
		supported: make(map[string]struct{}, len(f.Supported)),
	}
	for k, v := range f.Mappings {
		t.mappings[strings.ToLower(k)] = v
	}
	for _, s := range f.Supported {
		t.supported[strings.ToLower(s)] = struct{}{}
	}
	return t, nil
}

func setOf(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Language is one entry of the supported-translation catalog.
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// translatable lists the languages the translation provider accepts,
// by the names the provider itself uses.
var translatable = []string{
	"afrikaans", "albanian", "amharic", "arabic", "armenian", "azerbaijani",
	"basque", "belarusian", "bengali", "bosnian", "bulgarian", "catalan",
	"cebuano", "chichewa", "chinese (simplified)", "chinese (traditional)",
	"corsican", "croatian", "czech", "danish", "dutch", "english",
	"esperanto", "estonian", "filipino", "finnish", "french", "frisian",
	"galician", "georgian", "german", "greek", "gujarati", "haitian creole",
	"hausa", "hawaiian", "hebrew", "hindi", "hmong", "hungarian",
	"icelandic", "igbo", "indonesian", "irish", "italian", "japanese",
	"javanese", "kannada", "kazakh", "khmer", "kinyarwanda", "korean",
	"kurdish", "kyrgyz", "lao", "latin", "latvian", "lithuanian",
	"luxembourgish", "macedonian", "malagasy", "malay", "malayalam",
	"maltese", "maori", "marathi", "mongolian", "myanmar", "nepali",
	"norwegian", "odia", "pashto", "persian", "polish", "portuguese",
	"punjabi", "romanian", "russian", "samoan", "scots gaelic", "serbian",
	"sesotho", "shona", "sindhi", "sinhala", "slovak", "slovenian",
	"somali", "spanish", "sundanese", "swahili", "swedish", "tajik",
	"tamil", "tatar", "telugu", "thai", "turkish", "turkmen", "ukrainian",
	"urdu", "uyghur", "uzbek", "vietnamese", "welsh", "xhosa", "yiddish",
	"yoruba", "zulu",
}

var titleCaser = cases.Title(language.English)

// Title capitalizes the first letter of every hyphen- or space-delimited
// segment of code, e.g. "zh-cn" -> "Zh-Cn".
func Title(code string) string {
	return titleCaser.String(code)
}

// Languages returns the supported-translation catalog with title-cased
// labels, in the provider's order.
func Languages() []Language {
	out := make([]Language, len(translatable))
	for i, code := range translatable {
		out[i] = Language{Code: code, Label: Title(code)}
	}
	return out
}
