package disney

import (
	"encoding/json"
	"fmt"
)

// AvailabilityResponse is the decoded availability payload. Both maps are
// optional in the wire format; a payload with neither is valid but matches
// nothing.
type AvailabilityResponse struct {
	Restaurants  map[string]Restaurant  `json:"restaurant"`
	DiningEvents map[string]DiningEvent `json:"diningEvent"`
}

// Restaurant describes one reservable location and its offers keyed by date
type Restaurant struct {
	ID            string                        `json:"id"`
	Name          string                        `json:"name"`
	URLFriendlyID string                        `json:"urlFriendlyId"`
	Description   string                        `json:"description"`
	Offers        map[string][]MealPeriodOffers `json:"offers"`
}

// MealPeriodOffers groups a service window's offers by accessibility level
type MealPeriodOffers struct {
	MealPeriodType        string               `json:"mealPeriodType"`
	MealPeriodName        string               `json:"mealPeriodName"`
	OffersByAccessibility []AccessibilityGroup `json:"offersByAccessibility"`
}

type AccessibilityGroup struct {
	AccessibilityLevel string  `json:"accessibilityLevel"`
	Offers             []Offer `json:"offers"`
}

// Offer is one bookable time slot
type Offer struct {
	OfferID string `json:"offerId"`
	Label   string `json:"label"`
	Time    string `json:"time"`
}

// DiningEvent is a composite reservation product spanning multiple underlying
// restaurants, nested inside eventTimes
type DiningEvent struct {
	Name       string      `json:"name"`
	EventTimes []EventTime `json:"eventTimes"`
}

type EventTime struct {
	Restaurants map[string]Restaurant `json:"restaurant"`
}

// Meal period ids used by the site in place of human-readable names
const (
	MealPeriodBreakfast = 80000712
	MealPeriodBrunch    = 80000713
	MealPeriodDinner    = 80000714
	MealPeriodLunch     = 80000717
)

// DecodeAvailability decodes a raw availability payload into its typed form.
// A payload that is valid JSON but has neither a restaurant map nor a dining
// event map decodes to an empty response rather than an error.
func DecodeAvailability(raw []byte) (*AvailabilityResponse, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	resp := &AvailabilityResponse{}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return resp, nil
}

// Empty reports whether the response carries no offers at all
func (r *AvailabilityResponse) Empty() bool {
	return r == nil || (len(r.Restaurants) == 0 && len(r.DiningEvents) == 0)
}
