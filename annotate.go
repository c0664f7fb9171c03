package linse

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Annotation holds the pipeline output for a single word.
type Annotation struct {
	// Word is the input transcription.
	Word string `json:"word" yaml:"word"`
	// Segments is the tokenized word.
	Segments []string `json:"segments,omitempty" yaml:"segments,omitempty"`
	// Classes holds one sound-class label per segment.
	Classes []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	// Prosody holds one prosodic role per segment.
	Prosody []string `json:"prosody,omitempty" yaml:"prosody,omitempty"`
	// Weights holds one prosodic weight per segment.
	Weights []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	// Syllables is the syllabification of the segments.
	Syllables [][]string `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	// Err is the message of the first failing step, empty on success.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
	// Kind classifies Err, see Kind.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// AnnotateOptions configures Annotate.
type AnnotateOptions struct {
	// Model is the sound-class model for Classes. Default "sca".
	Model string
	// Format is the prosodic string format.
	Format ProsodyFormat
	// Workers bounds the number of words processed at once.
	// Default runtime.GOMAXPROCS(0).
	Workers int

	Tokenize  []TokenizeOption
	Classify  []ClassifyOption
	Syllables []SyllableOption
}

// AnnotateWord runs the full pipeline on one word. Failures are recorded
// on the returned Annotation.
func (s *Store) AnnotateWord(word string, opts AnnotateOptions) Annotation {
	a := Annotation{Word: word}
	fail := func(err error) Annotation {
		a.Err = err.Error()
		a.Kind = Kind(err)
		return a
	}
	model := opts.Model
	if model == "" {
		model = "sca"
	}

	segments, err := s.IPA(word, opts.Tokenize...)
	if err != nil {
		return fail(err)
	}
	a.Segments = segments

	if a.Classes, err = s.SoundClass(segments, model, opts.Classify...); err != nil {
		return fail(err)
	}
	if a.Prosody, err = s.Prosody(segments, opts.Format, opts.Classify...); err != nil {
		return fail(err)
	}
	weights, err := s.ProsodicWeight(segments, nil, opts.Classify...)
	if err != nil {
		return fail(err)
	}
	a.Weights = weights.Items()

	sylOpts := append([]SyllableOption{WithSyllableClassify(opts.Classify...)}, opts.Syllables...)
	if a.Syllables, err = s.Syllables(segments, sylOpts...); err != nil {
		return fail(err)
	}
	return a
}

// Annotate runs AnnotateWord over words concurrently. Results are in input
// order. A failing word never aborts the batch; only cancellation of ctx
// does, in which case the context error is returned.
func (s *Store) Annotate(ctx context.Context, words []string, opts AnnotateOptions) ([]Annotation, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Annotation, len(words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range words {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.AnnotateWord(w, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
