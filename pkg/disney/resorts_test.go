package disney

import (
	"strings"
	"testing"
)

func TestValidResort(t *testing.T) {
	for _, name := range []string{"dlr", "wdw"} {
		if !ValidResort(name) {
			t.Errorf("ValidResort(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "DLR", "tokyo", "paris"} {
		if ValidResort(name) {
			t.Errorf("ValidResort(%q) = true, want false", name)
		}
	}
}

func TestConfigFor(t *testing.T) {
	dlr := ConfigFor(ResortDisneyland)
	if dlr.BaseURL != "https://disneyland.disney.go.com" {
		t.Errorf("dlr BaseURL = %s", dlr.BaseURL)
	}
	if dlr.Domain != "disneyland.disney.go.com" {
		t.Errorf("dlr Domain = %s", dlr.Domain)
	}
	if !strings.HasSuffix(dlr.AuthFile, ".dinescout-auth-dlr.json") {
		t.Errorf("dlr AuthFile = %s", dlr.AuthFile)
	}

	wdw := ConfigFor(ResortDisneyWorld)
	if wdw.BaseURL != "https://disneyworld.disney.go.com" {
		t.Errorf("wdw BaseURL = %s", wdw.BaseURL)
	}
	if !strings.HasSuffix(wdw.AuthFile, ".dinescout-auth-wdw.json") {
		t.Errorf("wdw AuthFile = %s", wdw.AuthFile)
	}
	if wdw.AuthFile == dlr.AuthFile {
		t.Error("resorts must not share a credential file")
	}
}

func TestConfigForUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ConfigFor should panic on an unknown resort")
		}
	}()
	ConfigFor(Resort("tokyo"))
}

func TestPlacesURL(t *testing.T) {
	got := PlacesURL(ResortDisneyland, "2026-03-15")
	want := "https://disneyland.disney.go.com/finder/api/v1/explorer-service/list-ancestor-entities/dlr/80008297;entityType=destination/2026-03-15/dining"
	if got != want {
		t.Errorf("PlacesURL = %q, want %q", got, want)
	}

	got = PlacesURL(ResortDisneyWorld, "2026-03-15")
	if !strings.Contains(got, "wdw/80007798") {
		t.Errorf("wdw PlacesURL missing destination id: %q", got)
	}
}

func TestAvailabilityAPIPath(t *testing.T) {
	got := availabilityAPIPath(2, "2026-03-15")
	if !strings.HasPrefix(got, "/dine-res/api/availability/2/2026-03-15,2026-03-15/00:00:00,23:59:59") {
		t.Errorf("availabilityAPIPath = %q", got)
	}
	if !strings.Contains(got, "trimExclude=dining-events,diningEvent") {
		t.Errorf("availabilityAPIPath missing trimExclude: %q", got)
	}
}
