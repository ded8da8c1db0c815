package hub

import (
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/geofence"
)

type Hub struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Fence     geofence.Fence `db:"fence" json:"fence"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
