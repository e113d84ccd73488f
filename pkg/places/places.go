package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jedib0t/go-pretty/v6/table"

	"dinescout/pkg/disney"
)

const listingUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// Place is one reservation-accepting dining location
type Place struct {
	Name       string
	FacilityID string
	Location   string
}

type listingResponse struct {
	Results []listingEntry `json:"results"`
}

type listingEntry struct {
	Name         string      `json:"name"`
	FacilityID   json.Number `json:"facilityId"`
	LocationName string      `json:"locationName"`
	Facets       struct {
		TableService []string `json:"tableService"`
	} `json:"facets"`
}

// Lister fetches the resort's restaurant listing. No session needed: the
// places endpoint is public.
type Lister struct {
	client *resty.Client
}

func NewLister() *Lister {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", listingUserAgent)
	return &Lister{client: client}
}

// List returns all reservation-accepting places for the resort, sorted by
// name. The listing is fetched for a date a few days out, which is enough to
// populate the directory.
func (l *Lister) List(ctx context.Context, resort disney.Resort) ([]Place, error) {
	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

	out := &listingResponse{}
	res, err := l.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(disney.PlacesURL(resort, date))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve the list of restaurants: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to retrieve the list of restaurants: HTTP %d", res.StatusCode())
	}

	var places []Place
	for _, entry := range out.Results {
		if !acceptsReservations(entry) {
			continue
		}
		location := entry.LocationName
		if strings.HasPrefix(location, "finder.") {
			location = "Multiple Locations"
		}
		places = append(places, Place{
			Name:       entry.Name,
			FacilityID: entry.FacilityID.String(),
			Location:   location,
		})
	}

	sort.Slice(places, func(i, j int) bool { return places[i].Name < places[j].Name })
	return places, nil
}

func acceptsReservations(entry listingEntry) bool {
	for _, facet := range entry.Facets.TableService {
		if facet == "reservations-accepted" {
			return true
		}
	}
	return false
}

// RenderTable writes the places as a table
func RenderTable(w io.Writer, places []Place) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "ID", "Location"})
	for _, p := range places {
		t.AppendRow(table.Row{p.Name, p.FacilityID, p.Location})
	}
	t.Render()
}
