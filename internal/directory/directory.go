// Package directory maps company display names to ticker symbols.
//
// A small built-in table covers the default companies; a YAML file can add
// entries or override built-ins by name. Matching is exact: names are
// compared as given, with surrounding whitespace ignored.
package directory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Entry is one company name → ticker mapping.
type Entry struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Ticker string `yaml:"ticker" json:"ticker" validate:"required"`
}

type fileFormat struct {
	Companies []Entry `yaml:"companies" validate:"dive"`
}

// Builtin returns the default entries.
func Builtin() []Entry {
	return []Entry{
		{Name: "삼성전자", Ticker: "005930.KS"},
		{Name: "현대차", Ticker: "005380.KS"},
		{Name: "LG화학", Ticker: "051910.KQ"},
		{Name: "Apple", Ticker: "AAPL"},
		{Name: "Microsoft", Ticker: "MSFT"},
		{Name: "Netflix", Ticker: "NFLX"},
		{Name: "Tesla", Ticker: "TSLA"},
	}
}

// Directory is an immutable name → ticker table, safe for concurrent reads.
type Directory struct {
	byName map[string]string
}

// New builds a directory from entries. Later entries override earlier
// ones with the same name.
func New(entries ...Entry) *Directory {
	d := &Directory{byName: make(map[string]string, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		ticker := strings.TrimSpace(e.Ticker)
		if name == "" || ticker == "" {
			continue
		}
		d.byName[name] = ticker
	}
	return d
}

// Load builds the built-in directory and applies the entries in path, if
// path is non-empty.
func Load(path string) (*Directory, error) {
	entries := Builtin()
	if path != "" {
		extra, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, extra...)
	}
	return New(entries...), nil
}

// ReadFile parses a YAML directory file of the form
//
//	companies:
//	  - name: Nvidia
//	    ticker: NVDA
func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory file %s: %w", path, err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid directory file %s: %w", path, err)
	}
	return f.Companies, nil
}

// Lookup returns the ticker for an exact company name.
func (d *Directory) Lookup(name string) (string, bool) {
	t, ok := d.byName[strings.TrimSpace(name)]
	return t, ok
}

// Len returns the number of names.
func (d *Directory) Len() int { return len(d.byName) }

// Entries returns all mappings sorted by name.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, 0, len(d.byName))
	for n, t := range d.byName {
		out = append(out, Entry{Name: n, Ticker: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tickers returns the distinct tickers, sorted.
func (d *Directory) Tickers() []string {
	seen := make(map[string]bool, len(d.byName))
	var out []string
	for _, t := range d.byName {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// WriteFile saves entries in the format ReadFile accepts.
func WriteFile(path string, entries []Entry) error {
	data, err := yaml.Marshal(fileFormat{Companies: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
