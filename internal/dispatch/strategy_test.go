package dispatch

import (
	"testing"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
	"github.com/stretchr/testify/assert"
)

func TestFirstRegisteredEmptyPool(t *testing.T) {
	assert.Nil(t, FirstRegistered{}.Select(nil))
}

func TestFirstRegisteredPicksOldest(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pool := []partner.DeliveryPartner{
		{ID: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
	}
	picked := FirstRegistered{}.Select(pool)
	assert.Equal(t, "a", picked.ID)
}

func TestByHubFiltersForeignPartners(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hubA, hubB := "hub-a", "hub-b"
	pool := []partner.DeliveryPartner{
		{ID: "foreign", HubID: &hubB, CreatedAt: base},
		{ID: "local", HubID: &hubA, CreatedAt: base.Add(time.Minute)},
	}
	picked := ByHub{HubID: hubA}.Select(pool)
	assert.Equal(t, "local", picked.ID)
}

func TestByHubKeepsFloaters(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hubB := "hub-b"
	pool := []partner.DeliveryPartner{
		{ID: "foreign", HubID: &hubB, CreatedAt: base},
		{ID: "floater", CreatedAt: base.Add(time.Minute)},
	}
	picked := ByHub{HubID: "hub-a"}.Select(pool)
	assert.Equal(t, "floater", picked.ID, "partners without a home hub serve any hub")
}

func TestByHubEmptyAfterFilter(t *testing.T) {
	hubB := "hub-b"
	pool := []partner.DeliveryPartner{
		{ID: "foreign", HubID: &hubB},
	}
	assert.Nil(t, ByHub{HubID: "hub-a"}.Select(pool))
}
