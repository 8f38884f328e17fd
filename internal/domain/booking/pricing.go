package booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// RateTable is a snapshot of the configured rates, loaded once per request and
// threaded through every pricing call. Pricing never reads stored settings
// directly.
type RateTable struct {
	SingleDogNightCents     int64
	LongStayNightCents      int64
	MultiDogNightCents      int64
	CatNightCents           int64
	GroomingSmallCents      int64
	GroomingLargeCents      int64
	TaxiStandardCents       int64
	TaxiVetCents            int64
	TaxiAirportCents        int64
	LongStayThresholdNights int
}

// GroomingRate returns the grooming price for the given size.
func (r RateTable) GroomingRate(size GroomingSize) (int64, error) {
	switch size {
	case GroomingSmall:
		return r.GroomingSmallCents, nil
	case GroomingLarge:
		return r.GroomingLargeCents, nil
	default:
		return 0, domain.NewValidationError(fmt.Sprintf("invalid grooming size: %s", size))
	}
}

// TaxiRate returns the taxi price for the given trip type.
func (r RateTable) TaxiRate(trip TaxiTripType) (int64, error) {
	switch trip {
	case TripStandard:
		return r.TaxiStandardCents, nil
	case TripVet:
		return r.TaxiVetCents, nil
	case TripAirport:
		return r.TaxiAirportCents, nil
	default:
		return 0, domain.NewValidationError(fmt.Sprintf("invalid taxi trip type: %s", trip))
	}
}

// DogNightRate returns the per-dog nightly rate for a roster with dogCount
// dogs staying the given number of nights. With two or more dogs every dog is
// charged the multi rate regardless of stay length; a single dog gets the
// reduced long-stay rate for the entire stay once nights exceed the threshold.
func (r RateTable) DogNightRate(dogCount, nights int) int64 {
	if dogCount >= 2 {
		return r.MultiDogNightCents
	}
	if nights > r.LongStayThresholdNights {
		return r.LongStayNightCents
	}
	return r.SingleDogNightCents
}

// LineItem is one priced row of a breakdown. Totals are integer currency
// units; there is no rounding anywhere in pricing.
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

func newLineItem(description string, quantity, unitPriceCents int64) LineItem {
	return LineItem{
		Description:    description,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		TotalCents:     quantity * unitPriceCents,
	}
}

// LineItemsTotal sums the line totals.
func LineItemsTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.TotalCents
	}
	return total
}

// TaxiLegFlags indicates which boarding taxi add-on legs are requested.
type TaxiLegFlags struct {
	DropOff bool
	PickUp  bool
}

// ComputeBoardingBreakdown produces the priced line items for a boarding stay.
// Item order is deterministic: dogs in roster order, then cats in roster
// order, then grooming in roster order, then taxi legs (drop-off before
// pick-up). Zero nights is allowed and yields zero-priced boarding lines;
// rejecting same-day stays is the caller's business rule, not the engine's.
func ComputeBoardingBreakdown(
	nights int,
	pets []BookingPet,
	grooming map[uuid.UUID]GroomingSize,
	legs TaxiLegFlags,
	rates RateTable,
) ([]LineItem, error) {
	if nights < 0 {
		return nil, domain.NewValidationError("nights must not be negative")
	}
	if len(pets) == 0 {
		return nil, domain.NewValidationError("a booking requires at least one pet")
	}

	dogCount := 0
	roster := make(map[uuid.UUID]BookingPet, len(pets))
	for _, p := range pets {
		if !p.Species.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid species: %s", p.Species))
		}
		roster[p.PetID] = p
		if p.Species == SpeciesDog {
			dogCount++
		}
	}
	for petID := range grooming {
		p, ok := roster[petID]
		if !ok {
			return nil, domain.NewValidationError("grooming selection references a pet outside the roster")
		}
		if p.Species != SpeciesDog {
			return nil, domain.NewValidationError("grooming is only available for dogs")
		}
	}

	items := make([]LineItem, 0, len(pets)+len(grooming)+2)

	dogRate := rates.DogNightRate(dogCount, nights)
	for _, p := range pets {
		if p.Species == SpeciesDog {
			items = append(items, newLineItem(fmt.Sprintf("Dog boarding - %s", p.Name), int64(nights), dogRate))
		}
	}
	for _, p := range pets {
		if p.Species == SpeciesCat {
			items = append(items, newLineItem(fmt.Sprintf("Cat boarding - %s", p.Name), int64(nights), rates.CatNightCents))
		}
	}
	for _, p := range pets {
		size, ok := grooming[p.PetID]
		if !ok {
			continue
		}
		rate, err := rates.GroomingRate(size)
		if err != nil {
			return nil, err
		}
		items = append(items, newLineItem(fmt.Sprintf("Grooming (%s) - %s", size, p.Name), 1, rate))
	}
	if legs.DropOff {
		items = append(items, newLineItem("Taxi drop-off", 1, rates.TaxiStandardCents))
	}
	if legs.PickUp {
		items = append(items, newLineItem("Taxi pick-up", 1, rates.TaxiStandardCents))
	}

	return items, nil
}

// ComputeTaxiPrice produces the single line item for a standalone taxi trip.
func ComputeTaxiPrice(trip TaxiTripType, rates RateTable) ([]LineItem, error) {
	rate, err := rates.TaxiRate(trip)
	if err != nil {
		return nil, err
	}
	return []LineItem{newLineItem(fmt.Sprintf("Pet taxi (%s)", trip), 1, rate)}, nil
}
