// Package speech synthesizes spoken answers.
//
// Synthesis is optional and off by default; when enabled, the query
// endpoint attaches the synthesized answer as base64 MP3. Failures are
// logged and the audio is simply omitted — voice output never fails a
// request.
package speech

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	htgotts "github.com/hegedustibor/htgo-tts"

	"github.com/affinity-search/affinity/internal/langcode"
	"github.com/affinity-search/affinity/internal/log"
)

// Synthesizer renders answers to speech through the language-code table.
type Synthesizer struct {
	dir    string
	table  *langcode.Table
	logger log.Logger
}

// NewSynthesizer creates a Synthesizer writing scratch files under dir.
// An empty dir uses the system temp directory. logger may be nil.
func NewSynthesizer(dir string, table *langcode.Table, logger log.Logger) (*Synthesizer, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "affinity-speech")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating speech scratch dir: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Synthesizer{dir: dir, table: table, logger: logger}, nil
}

// SynthesizeBase64 renders text in lang (normalized through the table) and
// returns the MP3 bytes base64-encoded. The scratch file is removed before
// returning.
func (s *Synthesizer) SynthesizeBase64(text, lang string) (string, error) {
	voice := s.table.Normalize(lang)
	tts := htgotts.Speech{Folder: s.dir, Language: voice}

	name := uuid.New().String()
	path, err := tts.CreateSpeechFile(text, name)
	if err != nil {
		return "", fmt.Errorf("synthesizing speech (%s): %w", voice, err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Debug("removing speech scratch file", "path", path, "error", rmErr)
		}
	}()

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading synthesized audio: %w", err)
	}

	return base64.StdEncoding.EncodeToString(audio), nil
}
