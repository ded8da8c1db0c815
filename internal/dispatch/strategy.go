package dispatch

import (
	"sort"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
)

// SelectionStrategy picks one partner from the eligible pool. The default
// mirrors the storefront's behavior, earliest registration first; capacity
// or proximity aware strategies plug in here without touching the engine.
type SelectionStrategy interface {
	Select(pool []partner.DeliveryPartner) *partner.DeliveryPartner
}

type FirstRegistered struct{}

func (FirstRegistered) Select(pool []partner.DeliveryPartner) *partner.DeliveryPartner {
	if len(pool) == 0 {
		return nil
	}
	picked := pool[0]
	for _, p := range pool[1:] {
		if p.CreatedAt.Before(picked.CreatedAt) {
			picked = p
		}
	}
	return &picked
}

// ByHub narrows the pool to one hub before delegating, so partners assigned
// to another darkstore are never pulled across town.
type ByHub struct {
	HubID string
	Next  SelectionStrategy
}

func (s ByHub) Select(pool []partner.DeliveryPartner) *partner.DeliveryPartner {
	filtered := make([]partner.DeliveryPartner, 0, len(pool))
	for _, p := range pool {
		if p.HubID == nil || *p.HubID == s.HubID {
			filtered = append(filtered, p)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	next := s.Next
	if next == nil {
		next = FirstRegistered{}
	}
	return next.Select(filtered)
}
