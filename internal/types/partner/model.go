package partner

import "time"

type DeliveryPartner struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	IsOnline      bool      `db:"is_online" json:"is_online"`
	IsKycVerified bool      `db:"is_kyc_verified" json:"is_kyc_verified"`
	HubID         *string   `db:"hub_id" json:"hub_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Available reports whether the partner may receive auto-dispatched orders.
func (p *DeliveryPartner) Available() bool {
	return p.IsOnline && p.IsKycVerified
}
