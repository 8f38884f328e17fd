package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffective_MergesStoredOverDefaults(t *testing.T) {
	effective := Effective(map[string]int64{
		KeySingleDogNight: 4200,
		"someone_else":    999,
	})

	assert.Equal(t, int64(4200), effective[KeySingleDogNight], "stored value wins")
	assert.Equal(t, int64(2500), effective[KeyCatNight], "absent key falls back to default")
	_, ok := effective["someone_else"]
	assert.False(t, ok, "unknown keys are silently ignored")
	assert.Len(t, effective, len(KnownKeys()))
}

func TestRateTableFrom(t *testing.T) {
	rt := RateTableFrom(Effective(map[string]int64{
		KeyLongStayThreshold: 20,
		KeyTaxiVet:           2222,
	}))

	assert.Equal(t, 20, rt.LongStayThresholdNights)
	assert.Equal(t, int64(2222), rt.TaxiVetCents)
	assert.Equal(t, int64(3500), rt.SingleDogNightCents)
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey(KeyGroomingLarge))
	assert.False(t, IsKnownKey("grooming_xxl"))
}
