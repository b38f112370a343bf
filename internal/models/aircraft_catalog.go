package models

import "strings"

// Aircraft categories.
const (
	CategoryNarrowBody = "Narrow-body"
	CategoryWideBody   = "Wide-body"
	CategoryRegional   = "Regional"
	CategoryUnknown    = "Unknown"
)

// AircraftInfo is static catalog data for an aircraft type.
type AircraftInfo struct {
	Category     string
	Manufacturer string
	SeatCapacity int
}

// aircraftCatalog maps exact type codes to catalog data. Checked before the
// substring rules in aircraftFamilies.
var aircraftCatalog = map[string]AircraftInfo{
	"73H": {CategoryNarrowBody, "Boeing", 186},
	"73W": {CategoryNarrowBody, "Boeing", 149},
	"738": {CategoryNarrowBody, "Boeing", 186},
	"739": {CategoryNarrowBody, "Boeing", 188},
	"737": {CategoryNarrowBody, "Boeing", 149},
	"772": {CategoryWideBody, "Boeing", 316},
	"77W": {CategoryWideBody, "Boeing", 408},
	"789": {CategoryWideBody, "Boeing", 294},
	"78X": {CategoryWideBody, "Boeing", 344},
	"332": {CategoryWideBody, "Airbus", 268},
	"333": {CategoryWideBody, "Airbus", 292},
	"320": {CategoryNarrowBody, "Airbus", 180},
	"321": {CategoryNarrowBody, "Airbus", 220},
	"32N": {CategoryNarrowBody, "Airbus", 186},
	"32Q": {CategoryNarrowBody, "Airbus", 232},
	"E75": {CategoryRegional, "Embraer", 88},
	"E90": {CategoryRegional, "Embraer", 100},
	"295": {CategoryRegional, "Embraer", 132},
	"E7W": {CategoryRegional, "Embraer", 88},
}

// aircraftFamilies maps type-code prefixes to catalog data for codes not in
// the exact table. Order matters: longer prefixes first.
var aircraftFamilies = []struct {
	Prefix string
	Info   AircraftInfo
}{
	{"77", AircraftInfo{CategoryWideBody, "Boeing", 316}},
	{"78", AircraftInfo{CategoryWideBody, "Boeing", 294}},
	{"74", AircraftInfo{CategoryWideBody, "Boeing", 364}},
	{"73", AircraftInfo{CategoryNarrowBody, "Boeing", 170}},
	{"33", AircraftInfo{CategoryWideBody, "Airbus", 280}},
	{"35", AircraftInfo{CategoryWideBody, "Airbus", 315}},
	{"32", AircraftInfo{CategoryNarrowBody, "Airbus", 180}},
	{"31", AircraftInfo{CategoryNarrowBody, "Airbus", 120}},
	{"E", AircraftInfo{CategoryRegional, "Embraer", 94}},
	{"CR", AircraftInfo{CategoryRegional, "Bombardier", 76}},
	{"DH", AircraftInfo{CategoryRegional, "De Havilland", 78}},
}

// LookupAircraft resolves catalog data for a type code, first by exact code
// and then by family prefix. Unrecognized codes land in the Unknown tier.
func LookupAircraft(typeCode string) AircraftInfo {
	code := strings.ToUpper(strings.TrimSpace(typeCode))
	if code == "" {
		return AircraftInfo{Category: CategoryUnknown, Manufacturer: CategoryUnknown}
	}

	if info, ok := aircraftCatalog[code]; ok {
		return info
	}

	for _, fam := range aircraftFamilies {
		if strings.HasPrefix(code, fam.Prefix) {
			return fam.Info
		}
	}

	return AircraftInfo{Category: CategoryUnknown, Manufacturer: CategoryUnknown}
}
