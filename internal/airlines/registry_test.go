package airlines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return New(map[string]Entry{
		"UAL": {Name: "United Airlines", Website: "https://www.united.com"},
		"baw": {Name: "British Airways"},
		"NKS": {Name: "Spirit Airlines"},
	})
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestClassify(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		callsign     string
		kind         Kind
		prefix       string
		name         string
		website      string
		flightNumber string
	}{
		// Private registrations
		{"N12345", KindPrivate, "N12345", PrivateUSName, "<nil>", "<nil>"},
		{"N172SP", KindPrivate, "N172SP", PrivateUSName, "<nil>", "<nil>"},
		{"n5a", KindPrivate, "N5A", PrivateUSName, "<nil>", "<nil>"},
		{"N1", KindPrivate, "N1", PrivateUSName, "<nil>", "<nil>"},
		// Too long for an N-number: falls through to the airline rule
		{"N123456", KindUnknown, "N12", "<nil>", "<nil>", "<nil>"},
		// Letters in the middle are not a registration
		{"NKS123", KindAirline, "NKS", "Spirit Airlines", "<nil>", "123"},
		// A registration needs a digit after the N
		{"NKS", KindAirline, "NKS", "Spirit Airlines", "<nil>", "<nil>"},
		{"NAX", KindAirline, "NAX", "<nil>", "<nil>", "<nil>"},

		// Supersonic marker
		{"CONC001", KindSupersonic, "CONC", SupersonicName, "<nil>", "001"},
		{"conc1a", KindSupersonic, "CONC", SupersonicName, "<nil>", "1A"},
		{"CONC", KindSupersonic, "CONC", SupersonicName, "<nil>", "<nil>"},

		// IATA-style codes
		{"AA1", KindIATA, "AA", IATACodeName, "<nil>", "<nil>"},
		{"BA2490", KindIATA, "BA", IATACodeName, "<nil>", "<nil>"},

		// Known and unknown ICAO prefixes
		{"UAL123", KindAirline, "UAL", "United Airlines", "https://www.united.com", "123"},
		{"baw9x", KindAirline, "BAW", "British Airways", "<nil>", "9X"},
		{"UAL", KindAirline, "UAL", "United Airlines", "https://www.united.com", "<nil>"},
		{"XYZ42", KindAirline, "XYZ", "<nil>", "<nil>", "42"},

		// Fallback
		{"", KindUnknown, "<nil>", "<nil>", "<nil>", "<nil>"},
		{"1234", KindUnknown, "123", "<nil>", "<nil>", "<nil>"},
		{"A1", KindUnknown, "A1", "<nil>", "<nil>", "<nil>"},
		{"  ", KindUnknown, "<nil>", "<nil>", "<nil>", "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.callsign, func(t *testing.T) {
			c := reg.Classify(tt.callsign)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.prefix, deref(c.Prefix), "prefix")
			assert.Equal(t, tt.name, deref(c.Name), "name")
			assert.Equal(t, tt.website, deref(c.Website), "website")
			assert.Equal(t, tt.flightNumber, deref(c.FlightNumber), "flight number")
		})
	}
}

func TestClassifyWithEmptyTable(t *testing.T) {
	reg := New(nil)
	c := reg.Classify("DAL1")
	assert.Equal(t, KindAirline, c.Kind)
	assert.Nil(t, c.Name)
	assert.Equal(t, "1", deref(c.FlightNumber))
}

func TestLoadJSONAndYAML(t *testing.T) {
	jsonData := []byte(`{"dal": {"name": "Delta Air Lines", "website": "https://delta.com"}}`)
	yamlData := []byte("DAL:\n  name: Delta Air Lines\n  website: https://delta.com\n")

	for name, load := range map[string]func([]byte) (*Registry, error){
		"json": LoadJSON,
		"yaml": LoadYAML,
	} {
		t.Run(name, func(t *testing.T) {
			data := jsonData
			if name == "yaml" {
				data = yamlData
			}
			reg, err := load(data)
			require.NoError(t, err)
			assert.Equal(t, 1, reg.Len())

			e, ok := reg.Get("DAL")
			require.True(t, ok)
			assert.Equal(t, "Delta Air Lines", e.Name)
			assert.Equal(t, "https://delta.com", e.Website)
		})
	}
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := LoadJSON([]byte(`[1, 2`))
	require.Error(t, err)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "airlines.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("AAL:\n  name: American Airlines\n"), 0o644))

	reg, err := Load(yamlPath)
	require.NoError(t, err)
	c := reg.Classify("AAL100")
	assert.Equal(t, "American Airlines", deref(c.Name))

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
