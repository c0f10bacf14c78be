package vatsim

import (
	"time"
)

// Snapshot represents the raw JSON data from the network data feed
type Snapshot struct {
	General General `json:"general"`
	Pilots  []Pilot `json:"pilots"`
}

// General carries feed metadata
type General struct {
	Version          int       `json:"version"`
	Reload           int       `json:"reload"`
	Update           string    `json:"update"`
	UpdateTimestamp  time.Time `json:"update_timestamp"`
	ConnectedClients int       `json:"connected_clients"`
	UniqueUsers      int       `json:"unique_users"`
}

// Pilot represents a single connected pilot in the feed
type Pilot struct {
	CID         int         `json:"cid"`
	Name        string      `json:"name"`
	Callsign    string      `json:"callsign"`
	Server      string      `json:"server,omitempty"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Altitude    int         `json:"altitude"`    // feet
	Groundspeed int         `json:"groundspeed"` // knots
	Transponder string      `json:"transponder,omitempty"`
	Heading     int         `json:"heading"` // degrees true
	FlightPlan  *FlightPlan `json:"flight_plan,omitempty"`
	LogonTime   time.Time   `json:"logon_time"`
	LastUpdated time.Time   `json:"last_updated"`
}

// FlightPlan is the filed plan attached to a pilot (if any)
type FlightPlan struct {
	FlightRules   string `json:"flight_rules,omitempty"`
	Aircraft      string `json:"aircraft,omitempty"`
	AircraftFAA   string `json:"aircraft_faa,omitempty"`
	AircraftShort string `json:"aircraft_short,omitempty"`
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	Alternate     string `json:"alternate,omitempty"`
	CruiseTAS     string `json:"cruise_tas,omitempty"`
	Altitude      string `json:"altitude,omitempty"`
	Route         string `json:"route,omitempty"`
}

// DepartureICAO returns the declared departure or "" when there is no plan
func (p *Pilot) DepartureICAO() string {
	if p.FlightPlan == nil {
		return ""
	}
	return p.FlightPlan.Departure
}

// ArrivalICAO returns the declared arrival or "" when there is no plan
func (p *Pilot) ArrivalICAO() string {
	if p.FlightPlan == nil {
		return ""
	}
	return p.FlightPlan.Arrival
}

// AircraftType returns the short ICAO type from the plan, falling back to
// the full aircraft string
func (p *Pilot) AircraftType() string {
	if p.FlightPlan == nil {
		return ""
	}
	if p.FlightPlan.AircraftShort != "" {
		return p.FlightPlan.AircraftShort
	}
	return p.FlightPlan.Aircraft
}
