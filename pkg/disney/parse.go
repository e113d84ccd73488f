package disney

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CleanedTime is the normalized, filterable representation of one offer
type CleanedTime struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Label      string `json:"label"`
	MealPeriod string `json:"mealPeriod"`
	OfferID    string `json:"offerId"`
}

// DiningAvailability pairs a restaurant descriptor with its surviving offers.
// It is the unit handed to notification channels.
type DiningAvailability struct {
	Restaurant   Restaurant    `json:"restaurant"`
	CleanedTimes []CleanedTime `json:"cleanedTimes"`
}

var clockPattern = regexp.MustCompile(`(?i)(\d+):(\d+)(?:\s*(AM|PM))?`)

// ParseClock converts a time label ("13:00", "8:00 AM") to minutes since
// midnight. Unparsable input yields -1.
func ParseClock(s string) int {
	if s == "" {
		return -1
	}
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return -1
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	ampm := strings.ToUpper(m[3])
	if ampm == "PM" && hours < 12 {
		hours += 12
	}
	if ampm == "AM" && hours == 12 {
		hours = 0
	}
	return hours*60 + minutes
}

// extractCleanedTimes flattens meal period groups into CleanedTime entries.
// Dining events label entries with the meal period display name; regular
// restaurants use the type code.
func extractCleanedTimes(dateOffers []MealPeriodOffers, date string, useMealPeriodName bool) []CleanedTime {
	var cleaned []CleanedTime
	for _, mealPeriod := range dateOffers {
		period := mealPeriod.MealPeriodType
		if useMealPeriodName {
			period = mealPeriod.MealPeriodName
		}
		for _, access := range mealPeriod.OffersByAccessibility {
			for _, offer := range access.Offers {
				if offer.Label == "" && offer.OfferID == "" {
					// tolerate malformed entries by omission
					continue
				}
				cleaned = append(cleaned, CleanedTime{
					Date:       date,
					Time:       offer.Label,
					Label:      offer.Label,
					MealPeriod: period,
					OfferID:    offer.OfferID,
				})
			}
		}
	}
	return cleaned
}

// ParseAvailability transforms a decoded availability payload into the domain
// model for one date, keeping only offers inside the [startTime, endTime]
// window (inclusive, full day when unset). Restaurants and dining events with
// no surviving offers are omitted entirely.
func ParseAvailability(data *AvailabilityResponse, date, startTime, endTime string) map[string]DiningAvailability {
	result := make(map[string]DiningAvailability)
	if data == nil {
		return result
	}

	startMins := 0
	if startTime != "" {
		startMins = ParseClock(startTime)
	}
	endMins := 24 * 60
	if endTime != "" {
		endMins = ParseClock(endTime)
	}

	filterTimes := func(times []CleanedTime) []CleanedTime {
		var kept []CleanedTime
		for _, t := range times {
			m := ParseClock(t.Time)
			if m >= startMins && m <= endMins {
				kept = append(kept, t)
			}
		}
		return kept
	}

	for id, restaurant := range data.Restaurants {
		dateOffers := restaurant.Offers[date]
		if len(dateOffers) == 0 {
			continue
		}
		cleanedTimes := filterTimes(extractCleanedTimes(dateOffers, date, false))
		if len(cleanedTimes) == 0 {
			continue
		}
		result[id] = DiningAvailability{Restaurant: restaurant, CleanedTimes: cleanedTimes}
	}

	// Dining events nest restaurants inside eventTimes. The result is keyed by
	// the numeric prefix of the event id so id filters match, with all offers
	// from all sub-restaurants flattened into one entry.
	for eventID, event := range data.DiningEvents {
		var allCleanedTimes []CleanedTime
		var firstRestaurant *Restaurant

		for _, eventTime := range event.EventTimes {
			for _, subID := range sortedKeys(eventTime.Restaurants) {
				restaurant := eventTime.Restaurants[subID]
				if firstRestaurant == nil {
					r := restaurant
					firstRestaurant = &r
				}
				dateOffers := restaurant.Offers[date]
				if len(dateOffers) == 0 {
					continue
				}
				allCleanedTimes = append(allCleanedTimes, extractCleanedTimes(dateOffers, date, true)...)
			}
		}

		allCleanedTimes = filterTimes(allCleanedTimes)
		if len(allCleanedTimes) == 0 || firstRestaurant == nil {
			continue
		}

		// Display the event's name over the representative sub-restaurant's
		descriptor := *firstRestaurant
		descriptor.Name = event.Name
		eventIDNum, _, _ := strings.Cut(eventID, ";")
		result[eventIDNum] = DiningAvailability{Restaurant: descriptor, CleanedTimes: allCleanedTimes}
	}

	return result
}

// SummarizeTimes renders a compact per-meal-period summary of cleaned times,
// truncated to maxLength with a "+n more..." suffix. Display only.
func SummarizeTimes(cleanedTimes []CleanedTime, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 80
	}

	var order []string
	byMealPeriod := make(map[string][]string)
	for _, t := range cleanedTimes {
		if _, seen := byMealPeriod[t.MealPeriod]; !seen {
			order = append(order, t.MealPeriod)
		}
		byMealPeriod[t.MealPeriod] = append(byMealPeriod[t.MealPeriod], t.Time)
	}

	var parts []string
	for _, period := range order {
		times := byMealPeriod[period]
		if len(times) == 1 {
			parts = append(parts, fmt.Sprintf("%s: %s", period, times[0]))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s–%s (%d slots)", period, times[0], times[len(times)-1], len(times)))
		}
	}

	result := ""
	for i, part := range parts {
		next := part
		if result != "" {
			next = result + " | " + part
		}
		if result != "" && len(next) > maxLength {
			remaining := len(parts) - i
			return fmt.Sprintf("%s | +%d more...", result, remaining)
		}
		result = next
	}
	return result
}

func sortedKeys(m map[string]Restaurant) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
