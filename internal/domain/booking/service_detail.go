package booking

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType distinguishes a boarding stay from a standalone taxi trip.
type ServiceType string

const (
	ServiceBoarding ServiceType = "boarding"
	ServicePetTaxi  ServiceType = "pet_taxi"
)

// IsValid returns true if the service type is recognized.
func (t ServiceType) IsValid() bool {
	return t == ServiceBoarding || t == ServicePetTaxi
}

// Species is the kind of animal the business accepts.
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// IsValid returns true if the species is recognized.
func (s Species) IsValid() bool {
	return s == SpeciesDog || s == SpeciesCat
}

// GroomingSize selects the grooming price band for a dog.
type GroomingSize string

const (
	GroomingSmall GroomingSize = "small"
	GroomingLarge GroomingSize = "large"
)

// IsValid returns true if the grooming size is recognized.
func (g GroomingSize) IsValid() bool {
	return g == GroomingSmall || g == GroomingLarge
}

// TaxiTripType classifies a standalone taxi booking.
type TaxiTripType string

const (
	TripStandard TaxiTripType = "standard"
	TripVet      TaxiTripType = "vet"
	TripAirport  TaxiTripType = "airport"
)

// IsValid returns true if the trip type is recognized.
func (t TaxiTripType) IsValid() bool {
	return t == TripStandard || t == TripVet || t == TripAirport
}

// GroomingSelection records one dog picked for grooming, with the price that
// was in effect when the booking was made.
type GroomingSelection struct {
	PetID      uuid.UUID    `json:"pet_id"`
	PetName    string       `json:"pet_name"`
	Size       GroomingSize `json:"size"`
	PriceCents int64        `json:"price_cents"`
}

// TaxiLeg is one optional pickup or drop-off ride attached to a boarding stay.
type TaxiLeg struct {
	Enabled bool       `json:"enabled"`
	At      *time.Time `json:"at,omitempty"`
	Address string     `json:"address,omitempty"`
}

// BoardingDetail freezes the rates and add-on selections of a boarding stay at
// creation time, so later Settings changes never touch a committed booking.
type BoardingDetail struct {
	DogNightCents int64               `json:"dog_night_cents"`
	CatNightCents int64               `json:"cat_night_cents"`
	Grooming      []GroomingSelection `json:"grooming,omitempty"`
	DropOffLeg    TaxiLeg             `json:"drop_off_leg"`
	PickUpLeg     TaxiLeg             `json:"pick_up_leg"`
	TaxiLegCents  int64               `json:"taxi_leg_cents"`
}

// TaxiDetail freezes the trip type and price of a standalone taxi booking.
type TaxiDetail struct {
	TripType       TaxiTripType `json:"trip_type"`
	PriceCents     int64        `json:"price_cents"`
	PickupAddress  string       `json:"pickup_address,omitempty"`
	DropoffAddress string       `json:"dropoff_address,omitempty"`
}

// BookingPet is one animal assigned to a booking.
type BookingPet struct {
	PetID   uuid.UUID `json:"pet_id"`
	Name    string    `json:"name"`
	Species Species   `json:"species"`
}
