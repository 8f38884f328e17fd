package settings

import (
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/booking"
)

// Rate keys. Only these may be stored or updated; unknown keys in an update
// request are silently ignored.
const (
	KeySingleDogNight    = "boarding_single_dog_night"
	KeyLongStayNight     = "boarding_long_stay_night"
	KeyMultiDogNight     = "boarding_multi_dog_night"
	KeyCatNight          = "boarding_cat_night"
	KeyGroomingSmall     = "grooming_small"
	KeyGroomingLarge     = "grooming_large"
	KeyTaxiStandard      = "taxi_standard"
	KeyTaxiVet           = "taxi_vet"
	KeyTaxiAirport       = "taxi_airport"
	KeyLongStayThreshold = "long_stay_threshold_nights"
)

// defaults apply whenever a key has no stored value.
var defaults = map[string]int64{
	KeySingleDogNight:    3500,
	KeyLongStayNight:     3000,
	KeyMultiDogNight:     3200,
	KeyCatNight:          2500,
	KeyGroomingSmall:     2500,
	KeyGroomingLarge:     4000,
	KeyTaxiStandard:      1500,
	KeyTaxiVet:           2000,
	KeyTaxiAirport:       5000,
	KeyLongStayThreshold: 32,
}

// IsKnownKey reports whether the key is on the allow-list.
func IsKnownKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// KnownKeys returns the allow-listed keys.
func KnownKeys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	return keys
}

// Effective merges stored values over the hardcoded defaults and returns the
// complete settings map.
func Effective(stored map[string]int64) map[string]int64 {
	merged := make(map[string]int64, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range stored {
		if IsKnownKey(k) {
			merged[k] = v
		}
	}
	return merged
}

// RateTableFrom builds the pricing snapshot from an effective settings map.
func RateTableFrom(effective map[string]int64) booking.RateTable {
	return booking.RateTable{
		SingleDogNightCents:     effective[KeySingleDogNight],
		LongStayNightCents:      effective[KeyLongStayNight],
		MultiDogNightCents:      effective[KeyMultiDogNight],
		CatNightCents:           effective[KeyCatNight],
		GroomingSmallCents:      effective[KeyGroomingSmall],
		GroomingLargeCents:      effective[KeyGroomingLarge],
		TaxiStandardCents:       effective[KeyTaxiStandard],
		TaxiVetCents:            effective[KeyTaxiVet],
		TaxiAirportCents:        effective[KeyTaxiAirport],
		LongStayThresholdNights: int(effective[KeyLongStayThreshold]),
	}
}
