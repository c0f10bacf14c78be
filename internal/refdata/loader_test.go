package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightboard/internal/vatsim"
	"github.com/yegors/flightboard/pkg/logger"
)

const vatspy = `; VATSpy data
[Countries]
United States|K|Center

[Airports]
KBOS|General Edward Lawrence Logan Intl|42.36197|-71.0079|BOS|KZBW|0
KATL|Hartsfield-Jackson Atlanta Intl|33.63667|-84.42806|ATL|KZTL|0

[FIRs]
KZBW|Boston Center|KZBW|
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFromFiles(t *testing.T) {
	apPath := writeFile(t, "VATSpy.dat", vatspy)
	alPath := writeFile(t, "airlines.json", `{"ual": {"name": "United Airlines"}}`)

	tables, err := NewLoader(apPath, alPath, nil, logger.NewNop()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, tables.Airports.Len())
	assert.NotNil(t, tables.Airports.Lookup("kbos"))
	assert.Equal(t, 1, tables.Airlines.Len())
	e, ok := tables.Airlines.Get("UAL")
	require.True(t, ok)
	assert.Equal(t, "United Airlines", e.Name)
}

func TestLoadDefaultAirlines(t *testing.T) {
	apPath := writeFile(t, "VATSpy.dat", vatspy)

	tables, err := NewLoader(apPath, "", nil, logger.NewNop()).Load(context.Background())
	require.NoError(t, err)

	assert.Greater(t, tables.Airlines.Len(), 10)
	e, ok := tables.Airlines.Get("BAW")
	require.True(t, ok)
	assert.Equal(t, "British Airways", e.Name)
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/VATSpy.dat":
			_, _ = w.Write([]byte(vatspy))
		case "/airlines.yaml":
			_, _ = w.Write([]byte("DAL:\n  name: Delta Air Lines\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := vatsim.NewClient("", 5*time.Second, "", logger.NewNop())
	loader := NewLoader(srv.URL+"/VATSpy.dat", srv.URL+"/airlines.yaml?v=2", client, logger.NewNop())

	tables, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tables.Airports.Len())
	e, ok := tables.Airlines.Get("DAL")
	require.True(t, ok)
	assert.Equal(t, "Delta Air Lines", e.Name)
}

func TestLoadErrors(t *testing.T) {
	apPath := writeFile(t, "VATSpy.dat", vatspy)

	_, err := NewLoader("", "", nil, logger.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoAirportSource)

	_, err = NewLoader(filepath.Join(t.TempDir(), "missing.dat"), "", nil, logger.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	badAirlines := writeFile(t, "airlines.json", `{not json`)
	_, err = NewLoader(apPath, badAirlines, nil, logger.NewNop()).Load(context.Background())
	assert.Error(t, err)

	_, err = NewLoader("https://example.invalid/VATSpy.dat", "", nil, logger.NewNop()).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRemoteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := vatsim.NewClient("", time.Second, "", logger.NewNop())
	_, err := NewLoader(srv.URL+"/VATSpy.dat", "", client, logger.NewNop()).Load(context.Background())
	assert.ErrorIs(t, err, vatsim.ErrUnexpectedStatus)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "/etc/airlines.yml", sourceName("/etc/airlines.yml"))
	assert.Equal(t, "airlines.yaml", sourceName("https://example.com/data/airlines.yaml?v=1"))
}
