package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// printer renders command results as text, JSON or YAML.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "", "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q; valid values: text, json, yaml", format)
	}
	return &printer{w: w, format: format}, nil
}

// print writes v in the structured formats, or text in text mode.
func (p *printer) print(v any, text func(w io.Writer) error) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(p.w)
}

// result is one line of output for a single input.
type result struct {
	Input  string   `json:"input" yaml:"input"`
	Output []string `json:"output,omitempty" yaml:"output,omitempty"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func (p *printer) results(rs []result) error {
	return p.print(rs, func(w io.Writer) error {
		for _, r := range rs {
			if r.Error != "" {
				if _, err := fmt.Fprintf(w, "%s\tERROR: %s\n", r.Input, r.Error); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Input, strings.Join(r.Output, " ")); err != nil {
				return err
			}
		}
		return nil
	})
}

// parts is the output of a segmentation into syllables or morphemes.
type parts struct {
	Input []string   `json:"input" yaml:"input"`
	Parts [][]string `json:"parts" yaml:"parts"`
}

func (p *printer) parts(v parts) error {
	return p.print(v, func(w io.Writer) error {
		chunks := make([]string, len(v.Parts))
		for i, part := range v.Parts {
			chunks[i] = strings.Join(part, " ")
		}
		_, err := fmt.Fprintln(w, strings.Join(chunks, " . "))
		return err
	})
}
