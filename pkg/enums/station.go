package enums

import "fmt"

// Station is the kitchen preparation zone a ticket is routed to. Tickets with
// no station are visible on every terminal.
type Station string

const (
	StationKitchen Station = "KITCHEN"
	StationBar     Station = "BAR"
	StationDessert Station = "DESSERT"
)

var validStations = []Station{
	StationKitchen,
	StationBar,
	StationDessert,
}

// String implements fmt.Stringer.
func (s Station) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Station.
func (s Station) IsValid() bool {
	for _, candidate := range validStations {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStation converts raw input into a Station.
func ParseStation(value string) (Station, error) {
	for _, candidate := range validStations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid station %q", value)
}
