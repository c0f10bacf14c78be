// Package refdata loads the airport and airline reference tables from local
// files or HTTP URLs.
package refdata

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yegors/flightboard/internal/airlines"
	"github.com/yegors/flightboard/internal/airports"
	"github.com/yegors/flightboard/pkg/logger"
)

//go:embed airlines.yaml
var defaultAirlines []byte

// ErrNoAirportSource is returned when no airport table is configured
var ErrNoAirportSource = errors.New("no airport data source configured")

// Fetcher retrieves a remote document
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Tables holds the loaded registries
type Tables struct {
	Airports *airports.Registry
	Airlines *airlines.Registry
}

// Loader reads reference data from paths or URLs
type Loader struct {
	airportsSource string
	airlinesSource string
	fetcher        Fetcher
	logger         *logger.Logger
}

// NewLoader creates a loader. An empty airline source selects the built-in
// table.
func NewLoader(airportsSource, airlinesSource string, fetcher Fetcher, loggerObj *logger.Logger) *Loader {
	return &Loader{
		airportsSource: airportsSource,
		airlinesSource: airlinesSource,
		fetcher:        fetcher,
		logger:         loggerObj.Named("refdata"),
	}
}

// Load reads both tables concurrently
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	if l.airportsSource == "" {
		return nil, ErrNoAirportSource
	}

	var tables Tables
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		data, err := l.read(ctx, l.airportsSource)
		if err != nil {
			return fmt.Errorf("failed to read airports from %s: %w", l.airportsSource, err)
		}
		reg, err := airports.Load(bytes.NewReader(data))
		if err != nil {
			return err
		}
		tables.Airports = reg
		return nil
	})

	eg.Go(func() error {
		if l.airlinesSource == "" {
			reg, err := airlines.LoadYAML(defaultAirlines)
			if err != nil {
				return err
			}
			tables.Airlines = reg
			return nil
		}

		data, err := l.read(ctx, l.airlinesSource)
		if err != nil {
			return fmt.Errorf("failed to read airlines from %s: %w", l.airlinesSource, err)
		}
		reg, err := airlines.Decode(sourceName(l.airlinesSource), data)
		if err != nil {
			return err
		}
		tables.Airlines = reg
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("Reference data loaded",
		logger.Int("airports", tables.Airports.Len()),
		logger.Int("airlines", tables.Airlines.Len()),
	)

	return &tables, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if isURL(source) {
		if l.fetcher == nil {
			return nil, fmt.Errorf("no fetcher for %s", source)
		}
		return l.fetcher.Fetch(ctx, source)
	}
	return os.ReadFile(source)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sourceName returns the path component used to pick a decoder
func sourceName(source string) string {
	if !isURL(source) {
		return source
	}
	u, err := url.Parse(source)
	if err != nil {
		return source
	}
	return path.Base(u.Path)
}
