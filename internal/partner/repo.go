package partner

import (
	"context"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
)

type PartnerRepository interface {
	CreatePartner(ctx context.Context, p *partner.DeliveryPartner) error
	FindPartnerByID(ctx context.Context, id string) (*partner.DeliveryPartner, error)
	ListPartners(ctx context.Context) ([]partner.DeliveryPartner, error)
	ListAvailablePartners(ctx context.Context) ([]partner.DeliveryPartner, error)
	SetPartnerOnline(ctx context.Context, id string, online bool) error
	SetPartnerVerified(ctx context.Context, id string, verified bool) error
}
