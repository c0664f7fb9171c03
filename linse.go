// Package linse provides phonological sequence processing: an IPA-aware
// tokenizer, sound-class mapping, sonority profiles and prosodic strings,
// syllable and morpheme segmentation, and orthography profile conversion.
//
// All reference data (sound-class models, diacritic/vowel/tone sets and
// conversion tables) is loaded once into a Store, which is immutable
// afterwards and safe for concurrent use.
package linse

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store holds all loaded reference data and provides the public API.
type Store struct {
	// models maps model name (e.g. "sca", "art", "bipa") → *Model.
	models map[string]*Model

	// diacritics, vowels and tones are the default character sets used by
	// the tokenizer.
	diacritics charSet
	vowels     charSet
	tones      charSet

	// normalizer maps common mis-codings to their canonical form.
	normalizer *Normalizer

	// sampa and xsampa convert ASCII transcriptions to IPA.
	sampa  *SegmentGrouper
	xsampa *SegmentGrouper

	log logrus.FieldLogger
}

// StoreOption configures a Store at load time.
type StoreOption func(*Store)

// WithLogger sets the logger used for load diagnostics and for warnings
// emitted by lenient operations. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// New loads all reference data from dataDir and returns a ready-to-use Store.
// dataDir must have the same layout as the embedded data directory.
func New(dataDir string, opts ...StoreOption) (*Store, error) {
	if _, err := os.Stat(dataDir); err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	return NewFS(os.DirFS(dataDir), opts...)
}

// NewFS loads all reference data from fsys.
func NewFS(fsys fs.FS, opts ...StoreOption) (*Store, error) {
	s := &Store{
		models: make(map[string]*Model),
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}

	if err := s.loadDVT(fsys); err != nil {
		return nil, err
	}
	if err := s.loadModels(fsys); err != nil {
		return nil, err
	}
	if err := s.loadNormalizer(fsys); err != nil {
		return nil, err
	}
	if err := s.loadCLTS(fsys); err != nil {
		return nil, err
	}
	if err := s.loadSAMPA(fsys); err != nil {
		return nil, err
	}
	s.log.WithField("models", len(s.models)).Debug("linse data loaded")
	return s, nil
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the Store built from the embedded data. It is loaded on
// first use and shared afterwards.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = fmt.Errorf("embedded data: %w", err)
			return
		}
		defaultStore, defaultErr = NewFS(sub)
	})
	return defaultStore, defaultErr
}

// MustDefault is like Default but panics if the embedded data is broken.
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Model returns the named sound-class model.
func (s *Store) Model(name string) (*Model, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// Models returns the names of all loaded models in sorted order.
func (s *Store) Models() []string {
	out := make([]string, 0, len(s.models))
	for name := range s.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Diacritics returns the default diacritic set as a string.
func (s *Store) Diacritics() string { return s.diacritics.String() }

// Vowels returns the default vowel set as a string, including the
// precomposed letters derived from it.
func (s *Store) Vowels() string { return s.vowels.String() }

// Tones returns the default tone set as a string.
func (s *Store) Tones() string { return s.tones.String() }

// Normalize maps common mis-codings in s to their canonical IPA form.
func (s *Store) Normalize(text string) string {
	return s.normalizer.Normalize(text)
}

// Logger returns the logger the store was configured with.
func (s *Store) Logger() logrus.FieldLogger { return s.log }
