package disney

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resort identifies one of the two supported properties
type Resort string

const (
	ResortDisneyland  Resort = "dlr"
	ResortDisneyWorld Resort = "wdw"
)

// ResortConfig holds the per-resort endpoints and the credential file location
type ResortConfig struct {
	BaseURL    string
	Domain     string
	AuthFile   string
	PlacesPath string
}

var resortConfigs = map[Resort]ResortConfig{
	ResortDisneyland: {
		BaseURL:    "https://disneyland.disney.go.com",
		Domain:     "disneyland.disney.go.com",
		AuthFile:   authFilePath("dlr"),
		PlacesPath: "dlr/80008297",
	},
	ResortDisneyWorld: {
		BaseURL:    "https://disneyworld.disney.go.com",
		Domain:     "disneyworld.disney.go.com",
		AuthFile:   authFilePath("wdw"),
		PlacesPath: "wdw/80007798",
	},
}

// ValidResort reports whether s names a supported resort
func ValidResort(s string) bool {
	_, ok := resortConfigs[Resort(s)]
	return ok
}

// ConfigFor returns the configuration for a resort. It panics on unknown
// resorts; callers validate user input with ValidResort first.
func ConfigFor(resort Resort) ResortConfig {
	cfg, ok := resortConfigs[resort]
	if !ok {
		panic(fmt.Sprintf("unknown resort: %s", resort))
	}
	return cfg
}

// PlacesURL returns the explorer-service listing endpoint for a date
func PlacesURL(resort Resort, date string) string {
	cfg := ConfigFor(resort)
	return fmt.Sprintf("%s/finder/api/v1/explorer-service/list-ancestor-entities/%s;entityType=destination/%s/dining",
		cfg.BaseURL, cfg.PlacesPath, date)
}

// availabilityAPIPath builds the relative availability endpoint for a single
// date and a full-day time range. Relative because replay fetches run inside
// the page's own origin.
func availabilityAPIPath(partySize int, date string) string {
	return fmt.Sprintf("/dine-res/api/availability/%d/%s,%s/00:00:00,23:59:59"+
		"?trim=facets,media,webLinks,mediaGalleries,sortProductName&trimExclude=dining-events,diningEvent",
		partySize, date, date)
}

func authFilePath(resort string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, fmt.Sprintf(".dinescout-auth-%s.json", resort))
}
