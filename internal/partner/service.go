package partner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
	"github.com/google/uuid"
)

var (
	ErrPartnerNotFound = errors.New("delivery partner not found")
	ErrEmptyName       = errors.New("partner name must not be empty")
)

type Service struct {
	repo PartnerRepository
}

func NewService(repo PartnerRepository) *Service {
	return &Service{repo: repo}
}

// Register creates a partner. New partners start offline and unverified;
// they become dispatchable only after KYC and going online.
func (s *Service) Register(ctx context.Context, name string, hubID *string) (*partner.DeliveryPartner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	p := &partner.DeliveryPartner{
		ID:        uuid.NewString(),
		Name:      name,
		HubID:     hubID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreatePartner(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*partner.DeliveryPartner, error) {
	p, err := s.repo.FindPartnerByID(ctx, id)
	if err != nil || p == nil {
		return nil, ErrPartnerNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]partner.DeliveryPartner, error) {
	return s.repo.ListPartners(ctx)
}

func (s *Service) SetOnline(ctx context.Context, id string, online bool) (*partner.DeliveryPartner, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetPartnerOnline(ctx, id, online); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*partner.DeliveryPartner, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetPartnerVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
