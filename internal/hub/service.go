package hub

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/geofence"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/hub"
	"github.com/google/uuid"
)

var (
	ErrHubNotFound = errors.New("hub not found")
	ErrEmptyName   = errors.New("hub name must not be empty")
)

type Service struct {
	repo HubRepository
}

func NewService(repo HubRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string, fence geofence.Fence) (*hub.Hub, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if err := fence.Validate(); err != nil {
		return nil, err
	}
	h := &hub.Hub{
		ID:        uuid.NewString(),
		Name:      name,
		Fence:     fence,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateHub(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Get(ctx context.Context, id string) (*hub.Hub, error) {
	h, err := s.repo.FindHubByID(ctx, id)
	if err != nil || h == nil {
		return nil, ErrHubNotFound
	}
	return h, nil
}

func (s *Service) List(ctx context.Context) ([]hub.Hub, error) {
	return s.repo.ListHubs(ctx)
}

// CheckServiceability is the storefront's instant feedback when a customer
// drops a pin. The same fence is re-checked at checkout, this answer alone
// never admits an order.
func (s *Service) CheckServiceability(ctx context.Context, hubID string, p geofence.Point) (bool, string, error) {
	h, err := s.Get(ctx, hubID)
	if err != nil {
		return false, "", err
	}
	if !h.Fence.Contains(p) {
		return false, "address is outside the delivery zone", nil
	}
	return true, "", nil
}
