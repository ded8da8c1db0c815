package hub

import (
	"context"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/hub"
)

type HubRepository interface {
	CreateHub(ctx context.Context, h *hub.Hub) error
	FindHubByID(ctx context.Context, id string) (*hub.Hub, error)
	ListHubs(ctx context.Context) ([]hub.Hub, error)
}
