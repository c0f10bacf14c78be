package airlines

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which rule classified a callsign
type Kind string

const (
	KindPrivate    Kind = "private"
	KindSupersonic Kind = "supersonic"
	KindIATA       Kind = "iata"
	KindAirline    Kind = "airline"
	KindUnknown    Kind = "unknown"
)

// Display names for the fixed classifications
const (
	PrivateUSName    = "Private (United States)"
	SupersonicMarker = "CONC"
	SupersonicName   = "Concorde (Retired)"
	IATACodeName     = "Unknown Airline (IATA Code)"
)

var (
	// N-number: at least one digit, then at most two trailing letters, 1-5 chars total
	privateUSPattern = regexp.MustCompile(`^N[0-9]{1,5}[A-Z]{0,2}$`)
	iataStylePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]`)
	icaoPrefix       = regexp.MustCompile(`^[A-Z]{3}`)
)

// Entry is an airline in the prefix table
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Classification is the result of resolving a callsign. Nil pointers mean
// the value is unknown.
type Classification struct {
	Kind         Kind    `json:"kind"`
	Prefix       *string `json:"prefix"`
	Name         *string `json:"name"`
	Website      *string `json:"website"`
	FlightNumber *string `json:"flight_number"`
}

// Registry maps 3-letter ICAO callsign prefixes to airlines. It is
// read-only after construction.
type Registry struct {
	table map[string]Entry
}

// New creates a registry from a prefix table. Keys are upper-cased.
func New(table map[string]Entry) *Registry {
	normalized := make(map[string]Entry, len(table))
	for prefix, entry := range table {
		normalized[strings.ToUpper(strings.TrimSpace(prefix))] = entry
	}
	return &Registry{table: normalized}
}

// LoadJSON parses a JSON object of PREFIX -> {name, website}
func LoadJSON(data []byte) (*Registry, error) {
	var table map[string]Entry
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse airline JSON: %w", err)
	}
	return New(table), nil
}

// LoadYAML parses a YAML mapping of PREFIX -> {name, website}
func LoadYAML(data []byte) (*Registry, error) {
	var table map[string]Entry
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse airline YAML: %w", err)
	}
	return New(table), nil
}

// Decode picks the decoder from the file name extension (.yaml/.yml or JSON)
func Decode(name string, data []byte) (*Registry, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		return LoadJSON(data)
	}
}

// Load reads an airline table from disk
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Len returns the number of prefixes in the table
func (r *Registry) Len() int {
	return len(r.table)
}

// Get returns the table entry for a prefix
func (r *Registry) Get(prefix string) (Entry, bool) {
	e, ok := r.table[strings.ToUpper(prefix)]
	return e, ok
}

// Classify resolves a callsign. The rules are evaluated in order and the
// first match wins:
//  1. US private registration (N-number)
//  2. retired supersonic marker
//  3. two letters and a digit (IATA code, not valid on the network)
//  4. three-letter ICAO prefix, looked up in the table
//  5. fallback
func (r *Registry) Classify(callsign string) Classification {
	cs := strings.ToUpper(strings.TrimSpace(callsign))

	if isPrivateUS(cs) {
		return Classification{
			Kind:   KindPrivate,
			Prefix: ptr(cs),
			Name:   ptr(PrivateUSName),
		}
	}

	if strings.HasPrefix(cs, SupersonicMarker) {
		return Classification{
			Kind:         KindSupersonic,
			Prefix:       ptr(SupersonicMarker),
			Name:         ptr(SupersonicName),
			FlightNumber: nonEmpty(cs[len(SupersonicMarker):]),
		}
	}

	if iataStylePattern.MatchString(cs) {
		return Classification{
			Kind:   KindIATA,
			Prefix: ptr(cs[:2]),
			Name:   ptr(IATACodeName),
		}
	}

	if icaoPrefix.MatchString(cs) {
		prefix := cs[:3]
		c := Classification{
			Kind:         KindAirline,
			Prefix:       ptr(prefix),
			FlightNumber: nonEmpty(cs[3:]),
		}
		if entry, ok := r.table[prefix]; ok {
			c.Name = ptr(entry.Name)
			c.Website = nonEmpty(entry.Website)
		}
		return c
	}

	return Classification{
		Kind:   KindUnknown,
		Prefix: nonEmpty(firstN(cs, 3)),
	}
}

// isPrivateUS matches N followed by 1-5 alphanumerics of which only the
// last two may be letters
func isPrivateUS(cs string) bool {
	n := len(cs) - 1
	return n >= 1 && n <= 5 && privateUSPattern.MatchString(cs)
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptr(s string) *string {
	return &s
}
