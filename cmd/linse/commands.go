package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lingpy/linse"
	"github.com/lingpy/linse/profile"
)

func newTokenizeCmd(e *env) *cobra.Command {
	var (
		mergeVowels    bool
		mergeGeminates bool
		expandNasals   bool
		semi           string
		scheme         string
	)
	cmd := &cobra.Command{
		Use:   "tokenize WORD...",
		Short: "Split transcriptions into segments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e.cfg.Segment.TokenizeOptions()
			if cmd.Flags().Changed("merge-vowels") {
				opts = append(opts, linse.WithMergeVowels(mergeVowels))
			}
			if mergeGeminates {
				opts = append(opts, linse.WithMergeGeminates(true))
			}
			if expandNasals {
				opts = append(opts, linse.WithExpandNasals(linse.DefaultNasals, linse.DefaultNasalChar, linse.DefaultNasalPlaceholder))
			}
			if semi != "" {
				opts = append(opts, linse.WithSemiDiacritics(semi))
			}

			var tokenize func(string) ([]string, error)
			switch scheme {
			case "ipa":
				tokenize = func(w string) ([]string, error) { return e.store.IPA(w, opts...) }
			case "asjp":
				tokenize = func(w string) ([]string, error) { return e.store.ASJP(w, mergeVowels) }
			case "sampa":
				tokenize = e.store.SAMPA
			case "xsampa":
				tokenize = e.store.XSAMPA
			default:
				return fmt.Errorf("unknown scheme %q; valid values: ipa, asjp, sampa, xsampa", scheme)
			}

			rs := make([]result, len(args))
			for i, w := range args {
				rs[i] = result{Input: w}
				segs, err := tokenize(w)
				if err != nil {
					rs[i].Error = err.Error()
					e.log.WithError(err).WithField("word", w).Debug("tokenize failed")
					continue
				}
				rs[i].Output = segs
			}
			return e.out.results(rs)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&mergeVowels, "merge-vowels", true, "merge adjacent vowels into one segment")
	f.BoolVar(&mergeGeminates, "merge-geminates", false, "merge identical adjacent segments")
	f.BoolVar(&expandNasals, "expand-nasals", false, "emit a placeholder segment after nasalized vowels")
	f.StringVar(&semi, "semi-diacritics", "", "letters that attach to a preceding consonant")
	f.StringVar(&scheme, "scheme", "ipa", "input transcription: ipa, asjp, sampa or xsampa")
	return cmd
}

func classifyOptions(e *env, strictness string) ([]linse.ClassifyOption, error) {
	if strictness == "" {
		return e.cfg.Classify.ClassifyOptions(), nil
	}
	s, err := linse.ParseStrictness(strictness)
	if err != nil {
		return nil, err
	}
	return []linse.ClassifyOption{linse.WithStrictness(s)}, nil
}

func newClassifyCmd(e *env) *cobra.Command {
	var model, strictness string
	var suggest int
	cmd := &cobra.Command{
		Use:   "classify TOKEN...",
		Short: "Map segments to sound classes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := classifyOptions(e, strictness)
			if err != nil {
				return err
			}
			if model == "" {
				model = e.cfg.Classify.Model
			}
			classes, err := e.store.SoundClass(args, model, opts...)
			if err != nil {
				return err
			}
			rs := []result{{Input: strings.Join(args, " "), Output: classes}}
			if suggest > 0 {
				for i, c := range classes {
					if c != linse.Replacement {
						continue
					}
					sugg, err := e.store.Suggest(args[i], model, suggest)
					if err != nil {
						return err
					}
					r := result{Input: args[i]}
					for _, s := range sugg {
						r.Output = append(r.Output, s.Grapheme+"="+s.Class)
					}
					rs = append(rs, r)
				}
			}
			return e.out.results(rs)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "sound-class model (default from config, sca)")
	cmd.Flags().StringVar(&strictness, "strictness", "", "strict, warn or lenient")
	cmd.Flags().IntVar(&suggest, "suggest", 0, "list up to N known graphemes for unresolved tokens")
	return cmd
}

func newProsodyCmd(e *env) *cobra.Command {
	var format string
	var weights bool
	cmd := &cobra.Command{
		Use:   "prosody TOKEN...",
		Short: "Compute the prosodic string of a segmented word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e.cfg.Classify.ClassifyOptions()
			input := strings.Join(args, " ")
			if weights {
				ws, err := e.store.ProsodicWeight(args, nil, opts...)
				if err != nil {
					return err
				}
				return e.out.results([]result{{Input: input, Output: strings.Fields(ws.String())}})
			}
			f, err := linse.ParseProsodyFormat(format)
			if err != nil {
				return err
			}
			roles, err := e.store.Prosody(args, f, opts...)
			if err != nil {
				return err
			}
			return e.out.results([]result{{Input: input, Output: roles}})
		},
	}
	cmd.Flags().StringVar(&format, "format", "raw", "prosody alphabet: raw, cv, CcV or native")
	cmd.Flags().BoolVar(&weights, "weights", false, "print prosodic weights instead of roles")
	return cmd
}

func newSyllablesCmd(e *env) *cobra.Command {
	var maxVowels int
	var gap string
	cmd := &cobra.Command{
		Use:   "syllables TOKEN...",
		Short: "Split a segmented word into syllables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			syl, err := e.store.Syllables(args,
				linse.WithMaxVowels(maxVowels),
				linse.WithGap(gap),
				linse.WithSyllableClassify(e.cfg.Classify.ClassifyOptions()...),
			)
			if err != nil {
				return err
			}
			return e.out.parts(parts{Input: args, Parts: syl})
		},
	}
	cmd.Flags().IntVar(&maxVowels, "max-vowels", 2, "vowels after which a new vowel opens a syllable")
	cmd.Flags().StringVar(&gap, "gap", "-", "alignment gap symbol")
	return cmd
}

func newMorphemesCmd(e *env) *cobra.Command {
	var separators []string
	var splitOnTones bool
	cmd := &cobra.Command{
		Use:   "morphemes TOKEN...",
		Short: "Split a segmented word at morpheme separators",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []linse.MorphemeOption{linse.WithSeparators(separators...)}
			if splitOnTones {
				opts = append(opts, linse.WithSplitOnTones(true,
					linse.WithSyllableClassify(e.cfg.Classify.ClassifyOptions()...)))
			}
			m, err := e.store.Morphemes(args, opts...)
			if err != nil {
				return err
			}
			return e.out.parts(parts{Input: args, Parts: m})
		},
	}
	cmd.Flags().StringSliceVar(&separators, "separators", []string{"+", "_", "#"}, "morpheme separator tokens")
	cmd.Flags().BoolVar(&splitOnTones, "split-on-tones", false, "fall back to syllables when no separator occurs")
	return cmd
}

func newAnnotateCmd(e *env) *cobra.Command {
	var model, format string
	cmd := &cobra.Command{
		Use:   "annotate WORD...",
		Short: "Run the full pipeline on transcriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := linse.ParseProsodyFormat(format)
			if err != nil {
				return err
			}
			if model == "" {
				model = e.cfg.Classify.Model
			}
			as, err := e.store.Annotate(cmd.Context(), args, linse.AnnotateOptions{
				Model:    model,
				Format:   f,
				Workers:  e.cfg.Batch.Workers,
				Tokenize: e.cfg.Segment.TokenizeOptions(),
				Classify: e.cfg.Classify.ClassifyOptions(),
			})
			if err != nil {
				return err
			}
			return e.out.print(as, func(w io.Writer) error {
				for _, a := range as {
					if a.Err != "" {
						if _, err := fmt.Fprintf(w, "%s\tERROR: %s\n", a.Word, a.Err); err != nil {
							return err
						}
						continue
					}
					if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Word,
						strings.Join(a.Segments, " "),
						strings.Join(a.Classes, " "),
						strings.Join(a.Prosody, " ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "sound-class model (default from config, sca)")
	cmd.Flags().StringVar(&format, "format", "raw", "prosody alphabet: raw, cv, CcV or native")
	return cmd
}

func newConvertCmd(e *env) *cobra.Command {
	var table, column, delim, normalization, missing string
	cmd := &cobra.Command{
		Use:   "convert --table FILE TEXT...",
		Short: "Segment text with a conversion table and convert it to a column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := linse.GrouperFromFile(table, delim,
				linse.WithNormalization(normalization),
				linse.WithMissing(missing),
			)
			if err != nil {
				return err
			}
			rs := make([]result, len(args))
			for i, text := range args {
				rs[i] = result{Input: text}
				out, err := g.Group(text, column)
				if err != nil {
					return err
				}
				rs[i].Output = out
			}
			return e.out.results(rs)
		},
	}
	f := cmd.Flags()
	f.StringVar(&table, "table", "", "conversion table (delimited, with a Sequence column)")
	f.StringVar(&column, "column", "", "target column (default: the segments themselves)")
	f.StringVar(&delim, "delimiter", "\t", "table delimiter")
	f.StringVar(&normalization, "normalization", "NFD", "Unicode normalization: NFC, NFD, NFKC, NFKD or empty")
	f.StringVar(&missing, "missing", linse.DefaultMissing, "template for unknown segments, {} is the segment")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func newProfileCmd(e *env) *cobra.Command {
	var (
		textColumn string
		language   string
		columns    []string
		preceding  string
		following  string
		exceptions string
	)
	cmd := &cobra.Command{
		Use:   "profile FILE",
		Short: "Draft an orthography profile from a CLDF forms file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.FromCLDF(cmd.Context(), e.store, args[0], textColumn, language,
				profile.WithPreceding(preceding),
				profile.WithFollowing(following),
				profile.WithWorkers(e.cfg.Batch.Workers),
				profile.WithLogger(e.log),
			)
			if err != nil {
				return err
			}
			table, err := p.Profile(columns, nil, nil)
			if err != nil {
				return err
			}
			if exceptions != "" {
				if err := p.WriteExceptions(exceptions); err != nil {
					return err
				}
			}
			return e.out.print(table, func(w io.Writer) error {
				return linse.WriteTable(w, table[0], table[1:], "\t")
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&textColumn, "text-column", "Form", "column holding the transcriptions")
	f.StringVar(&language, "language", "", "only use forms with this Language_ID")
	f.StringSliceVar(&columns, "columns", []string{"Grapheme", "IPA", "SCA", "Frequency", "Examples"}, "profile columns")
	f.StringVar(&preceding, "preceding", "", "marker prepended to the first grapheme of each form")
	f.StringVar(&following, "following", "", "marker appended to the last grapheme of each form")
	f.StringVar(&exceptions, "exceptions", "", "write unsegmentable forms to this file")
	return cmd
}
