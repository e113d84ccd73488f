package disney

import (
	"errors"
	"testing"
)

func TestDecodeAvailability(t *testing.T) {
	raw := []byte(`{
		"restaurant": {
			"123": {
				"id": "123",
				"name": "Test Restaurant",
				"offers": {
					"2026-03-15": [
						{
							"mealPeriodType": "80000712",
							"mealPeriodName": "Breakfast",
							"offersByAccessibility": [
								{"offers": [{"label": "08:00 AM", "offerId": "o1"}]}
							]
						}
					]
				}
			}
		}
	}`)

	resp, err := DecodeAvailability(raw)
	if err != nil {
		t.Fatalf("DecodeAvailability returned error: %v", err)
	}
	restaurant, ok := resp.Restaurants["123"]
	if !ok {
		t.Fatal("expected restaurant 123")
	}
	if restaurant.Name != "Test Restaurant" {
		t.Errorf("name = %q", restaurant.Name)
	}
	offers := restaurant.Offers["2026-03-15"]
	if len(offers) != 1 || offers[0].MealPeriodName != "Breakfast" {
		t.Fatalf("unexpected offers: %+v", offers)
	}
	if offers[0].OffersByAccessibility[0].Offers[0].Label != "08:00 AM" {
		t.Error("offer label not decoded")
	}
}

func TestDecodeAvailabilityEmpty(t *testing.T) {
	if _, err := DecodeAvailability(nil); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("empty payload error = %v, want ErrMalformedPayload", err)
	}
}

func TestDecodeAvailabilityMalformed(t *testing.T) {
	if _, err := DecodeAvailability([]byte(`not json`)); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("malformed payload error = %v, want ErrMalformedPayload", err)
	}
}

func TestEmpty(t *testing.T) {
	var nilResp *AvailabilityResponse
	if !nilResp.Empty() {
		t.Error("nil response should be empty")
	}
	if !(&AvailabilityResponse{}).Empty() {
		t.Error("zero response should be empty")
	}
	withRestaurant := &AvailabilityResponse{Restaurants: map[string]Restaurant{"1": {}}}
	if withRestaurant.Empty() {
		t.Error("response with a restaurant should not be empty")
	}
	withEvent := &AvailabilityResponse{DiningEvents: map[string]DiningEvent{"1;entityType=dining-event": {}}}
	if withEvent.Empty() {
		t.Error("response with a dining event should not be empty")
	}
}
