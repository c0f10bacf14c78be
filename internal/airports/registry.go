// Package airports loads the VATSpy airport reference table and answers
// lookups and substring searches against it.
package airports

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	airportsSection  = "[airports]"
	commentMarker    = ";"
	minFields        = 6
	pseudoFlag       = "1"
	searchCacheSize  = 256
	fieldICAO        = 0
	fieldName        = 1
	fieldLat         = 2
	fieldLon         = 3
	fieldIATA        = 4
	fieldFIR         = 5
	fieldPseudo      = 6
	maxScannerBuffer = 1024 * 1024
)

// Airport is a single airport reference record
type Airport struct {
	ICAO string  `json:"icao"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	IATA string  `json:"iata,omitempty"`
	FIR  string  `json:"fir"`
}

// Registry is an immutable ICAO-keyed airport table. It is safe for
// concurrent readers once returned from Load or Parse.
type Registry struct {
	byICAO map[string]Airport
	order  []string // ICAO codes in file order, for search
	cache  *lru.Cache[searchKey, []Airport]
}

type searchKey struct {
	query string
	limit int
}

// Parse parses reference text already held in memory
func Parse(text string) *Registry {
	// strings.Reader never fails
	r, _ := Load(strings.NewReader(text))
	return r
}

// Load reads the sectioned, pipe-delimited reference format. Only lines
// inside the [Airports] section are considered; malformed lines are skipped.
func Load(r io.Reader) (*Registry, error) {
	reg := newRegistry()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)

	inAirports := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inAirports = strings.EqualFold(line, airportsSection)
			continue
		}

		if !inAirports {
			continue
		}

		airport, ok := parseLine(line)
		if !ok {
			continue
		}
		reg.add(airport)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read airport data: %w", err)
	}

	return reg, nil
}

func newRegistry() *Registry {
	// Only fails for a non-positive size
	cache, _ := lru.New[searchKey, []Airport](searchCacheSize)
	return &Registry{
		byICAO: make(map[string]Airport),
		cache:  cache,
	}
}

// parseLine parses ICAO|Name|Lat|Lon|IATA|FIR[|Pseudo]
func parseLine(line string) (Airport, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < minFields {
		return Airport{}, false
	}

	if len(parts) > fieldPseudo && strings.TrimSpace(parts[fieldPseudo]) == pseudoFlag {
		return Airport{}, false
	}

	icao := strings.ToUpper(strings.TrimSpace(parts[fieldICAO]))
	if icao == "" {
		return Airport{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[fieldLat]), 64)
	if err != nil {
		return Airport{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[fieldLon]), 64)
	if err != nil {
		return Airport{}, false
	}

	return Airport{
		ICAO: icao,
		Name: strings.TrimSpace(parts[fieldName]),
		Lat:  lat,
		Lon:  lon,
		IATA: strings.ToUpper(strings.TrimSpace(parts[fieldIATA])),
		FIR:  strings.TrimSpace(parts[fieldFIR]),
	}, true
}

func (r *Registry) add(a Airport) {
	if _, exists := r.byICAO[a.ICAO]; !exists {
		r.order = append(r.order, a.ICAO)
	}
	r.byICAO[a.ICAO] = a
}

// Len returns the number of airports in the registry
func (r *Registry) Len() int {
	return len(r.byICAO)
}

// Get looks up an airport by ICAO code (case-insensitive)
func (r *Registry) Get(icao string) (Airport, bool) {
	a, ok := r.byICAO[strings.ToUpper(strings.TrimSpace(icao))]
	return a, ok
}

// Lookup is like Get but returns nil when the airport is unknown
func (r *Registry) Lookup(icao string) *Airport {
	if icao == "" {
		return nil
	}
	a, ok := r.Get(icao)
	if !ok {
		return nil
	}
	return &a
}

// Search returns at most limit airports whose ICAO, name or IATA code
// contains query (case-insensitive), in table order. No ranking is applied.
func (r *Registry) Search(query string, limit int) []Airport {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []Airport{}
	}

	key := searchKey{query: q, limit: limit}
	if cached, ok := r.cache.Get(key); ok {
		return slices.Clone(cached)
	}

	results := make([]Airport, 0, limit)
	for _, icao := range r.order {
		a := r.byICAO[icao]
		if strings.Contains(a.ICAO, q) ||
			strings.Contains(strings.ToUpper(a.Name), q) ||
			(a.IATA != "" && strings.Contains(a.IATA, q)) {
			results = append(results, a)
			if len(results) >= limit {
				break
			}
		}
	}

	r.cache.Add(key, results)
	return slices.Clone(results)
}
