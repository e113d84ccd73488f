package disney

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"13:00", 780},
		{"08:00", 480},
		{"00:00", 0},
		{"8:00 AM", 480},
		{"08:00 AM", 480},
		{"11:59 AM", 719},
		{"1:00 PM", 780},
		{"01:00 PM", 780},
		{"11:59 PM", 1439},
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"12:30 PM", 750},
		{"", -1},
		{"invalid", -1},
	}

	for _, tt := range tests {
		if got := ParseClock(tt.input); got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

const testDate = "2026-03-15"

func testPayload() *AvailabilityResponse {
	return &AvailabilityResponse{
		Restaurants: map[string]Restaurant{
			"123": {
				ID:   "123",
				Name: "Test Restaurant",
				Offers: map[string][]MealPeriodOffers{
					testDate: {
						{
							MealPeriodType: "Breakfast",
							MealPeriodName: "Breakfast",
							OffersByAccessibility: []AccessibilityGroup{
								{
									AccessibilityLevel: "standard",
									Offers: []Offer{
										{Label: "08:00 AM", OfferID: "1"},
										{Label: "10:30 AM", OfferID: "2"},
									},
								},
							},
						},
						{
							MealPeriodType: "Lunch",
							MealPeriodName: "Lunch",
							OffersByAccessibility: []AccessibilityGroup{
								{
									AccessibilityLevel: "standard",
									Offers: []Offer{
										{Label: "12:00 PM", OfferID: "3"},
										{Label: "1:00 PM", OfferID: "4"},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func timesOf(avail DiningAvailability) []string {
	var out []string
	for _, t := range avail.CleanedTimes {
		out = append(out, t.Time)
	}
	return out
}

func TestParseAvailabilityNoWindow(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "", "")

	avail, ok := result["123"]
	if !ok {
		t.Fatal("expected restaurant 123 in result")
	}
	want := []string{"08:00 AM", "10:30 AM", "12:00 PM", "1:00 PM"}
	if got := timesOf(avail); !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
}

func TestParseAvailabilityStartTime(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "10:00 AM", "")

	avail, ok := result["123"]
	if !ok {
		t.Fatal("expected restaurant 123 in result")
	}
	want := []string{"10:30 AM", "12:00 PM", "1:00 PM"}
	if got := timesOf(avail); !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
}

func TestParseAvailabilityEndTime(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "", "12:30 PM")

	avail, ok := result["123"]
	if !ok {
		t.Fatal("expected restaurant 123 in result")
	}
	want := []string{"08:00 AM", "10:30 AM", "12:00 PM"}
	if got := timesOf(avail); !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
}

func TestParseAvailabilityBothBounds24Hour(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "09:00", "12:30")

	avail, ok := result["123"]
	if !ok {
		t.Fatal("expected restaurant 123 in result")
	}
	want := []string{"10:30 AM", "12:00 PM"}
	if got := timesOf(avail); !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
}

func TestParseAvailabilityAllFilteredOut(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "04:00 PM", "09:00 PM")

	if _, ok := result["123"]; ok {
		t.Error("restaurant 123 should be omitted when all times are filtered out")
	}
	if len(result) != 0 {
		t.Errorf("result should be empty, got %d entries", len(result))
	}
}

func TestParseAvailabilityWrongDate(t *testing.T) {
	result := ParseAvailability(testPayload(), "2026-03-16", "", "")
	if len(result) != 0 {
		t.Errorf("result should be empty for a date with no offers, got %d entries", len(result))
	}
}

func TestParseAvailabilityMealPeriodTags(t *testing.T) {
	result := ParseAvailability(testPayload(), testDate, "", "")
	avail := result["123"]

	if avail.CleanedTimes[0].MealPeriod != "Breakfast" {
		t.Errorf("expected Breakfast tag, got %s", avail.CleanedTimes[0].MealPeriod)
	}
	if avail.CleanedTimes[2].MealPeriod != "Lunch" {
		t.Errorf("expected Lunch tag, got %s", avail.CleanedTimes[2].MealPeriod)
	}
}

func eventPayload() *AvailabilityResponse {
	subOffers := func(label, offerID string) map[string][]MealPeriodOffers {
		return map[string][]MealPeriodOffers{
			testDate: {
				{
					MealPeriodType: "80000714",
					MealPeriodName: "Dinner",
					OffersByAccessibility: []AccessibilityGroup{
						{Offers: []Offer{{Label: label, OfferID: offerID}}},
					},
				},
			},
		}
	}

	return &AvailabilityResponse{
		DiningEvents: map[string]DiningEvent{
			"19634698;entityType=dining-event": {
				Name: "World of Color Dining Package",
				EventTimes: []EventTime{
					{
						Restaurants: map[string]Restaurant{
							"354099": {ID: "354099", Name: "Carthay Circle", Offers: subOffers("5:00 PM", "a")},
							"354199": {ID: "354199", Name: "Wine Country Trattoria", Offers: subOffers("5:30 PM", "b")},
						},
					},
				},
			},
		},
	}
}

func TestParseAvailabilityDiningEvent(t *testing.T) {
	result := ParseAvailability(eventPayload(), testDate, "", "")

	if len(result) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(result))
	}

	avail, ok := result["19634698"]
	if !ok {
		t.Fatal("expected event keyed by numeric id prefix 19634698")
	}
	if avail.Restaurant.Name != "World of Color Dining Package" {
		t.Errorf("expected event display name, got %q", avail.Restaurant.Name)
	}
	if len(avail.CleanedTimes) != 2 {
		t.Fatalf("expected union of both sub-restaurants' offers, got %d entries", len(avail.CleanedTimes))
	}
	for _, cleaned := range avail.CleanedTimes {
		if cleaned.MealPeriod != "Dinner" {
			t.Errorf("event offers should carry the meal period display name, got %q", cleaned.MealPeriod)
		}
	}
}

func TestParseAvailabilityEventFilteredOut(t *testing.T) {
	result := ParseAvailability(eventPayload(), testDate, "08:00 AM", "10:00 AM")
	if len(result) != 0 {
		t.Errorf("event should be omitted when all offers are filtered out, got %d entries", len(result))
	}
}

func TestParseAvailabilityIdempotent(t *testing.T) {
	payload := testPayload()
	first := ParseAvailability(payload, testDate, "09:00", "")
	second := ParseAvailability(payload, testDate, "09:00", "")

	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same payload twice should yield identical output")
	}
}

func TestSummarizeTimesSingle(t *testing.T) {
	times := []CleanedTime{
		{Time: "08:00 AM", MealPeriod: "Breakfast"},
	}
	got := SummarizeTimes(times, 80)
	if got != "Breakfast: 08:00 AM" {
		t.Errorf("SummarizeTimes = %q", got)
	}
}

func TestSummarizeTimesGrouped(t *testing.T) {
	times := []CleanedTime{
		{Time: "08:00 AM", MealPeriod: "Breakfast"},
		{Time: "10:30 AM", MealPeriod: "Breakfast"},
		{Time: "12:00 PM", MealPeriod: "Lunch"},
	}
	got := SummarizeTimes(times, 80)
	want := "Breakfast: 08:00 AM–10:30 AM (2 slots) | Lunch: 12:00 PM"
	if got != want {
		t.Errorf("SummarizeTimes = %q, want %q", got, want)
	}
}

func TestSummarizeTimesTruncates(t *testing.T) {
	times := []CleanedTime{
		{Time: "08:00 AM", MealPeriod: "Breakfast"},
		{Time: "10:30 AM", MealPeriod: "Breakfast"},
		{Time: "12:00 PM", MealPeriod: "Lunch"},
		{Time: "1:00 PM", MealPeriod: "Lunch"},
		{Time: "6:00 PM", MealPeriod: "Dinner"},
		{Time: "7:00 PM", MealPeriod: "Dinner"},
	}
	got := SummarizeTimes(times, 40)
	if len(got) == 0 {
		t.Fatal("expected non-empty summary")
	}
	if want := "+2 more..."; !strings.Contains(got, want) {
		t.Errorf("expected truncation suffix %q in %q", want, got)
	}
}
