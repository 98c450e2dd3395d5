package translate

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// detectable is the language set the detector distinguishes between.
// It mirrors the languages the speech table carries; a smaller set keeps
// detection accurate on short queries.
var detectable = []lingua.Language{
	lingua.Arabic,
	lingua.Bengali,
	lingua.Chinese,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Gujarati,
	lingua.Hindi,
	lingua.Italian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Marathi,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Spanish,
	lingua.Tamil,
	lingua.Telugu,
	lingua.Urdu,
}

// Detector guesses the language of a query. Detection never fails: when
// no language can be determined, English is assumed.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds the detector. Building loads the language models, so
// construct once at startup and share.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of the best-guess language
// of text, or "en" when undecidable.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "en"
	}

	// The translation and speech tables key Chinese regionally.
	if lang == lingua.Chinese {
		return "zh-cn"
	}

	return strings.ToLower(lang.IsoCode639_1().String())
}
