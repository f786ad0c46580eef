package domain

import "fmt"

// VelocityZone classifies pick locations by turnover speed. Hot locations are
// nearest the packing stations and get drained first.
type VelocityZone string

const (
	VelocityHot  VelocityZone = "hot"
	VelocityWarm VelocityZone = "warm"
	VelocityCold VelocityZone = "cold"
)

// Rank orders velocity zones for candidate sorting. Lower rank is picked
// first. Unknown zones sort last.
func (v VelocityZone) Rank() int {
	switch v {
	case VelocityHot:
		return 0
	case VelocityWarm:
		return 1
	case VelocityCold:
		return 2
	default:
		return 3
	}
}

// LocationStock is the inventory subsystem's view of one SKU at one pick
// location.
type LocationStock struct {
	LocationID string       `json:"locationId" bson:"locationId"`
	SKU        string       `json:"sku" bson:"sku"`
	TenantID   string       `json:"tenantId" bson:"tenantId"`
	Available  int          `json:"available" bson:"available"`
	Capacity   int          `json:"capacity" bson:"capacity"`
	Velocity   VelocityZone `json:"velocity" bson:"velocity"`
	Zone       string       `json:"zone" bson:"zone"`
	Aisle      int          `json:"aisle" bson:"aisle"`
	Rack       int          `json:"rack" bson:"rack"`
	Level      int          `json:"level" bson:"level"`
}

// WalkOrder returns a scalar walk position used to sequence tasks along a
// serpentine pick path. Zone changes dominate, then aisle, then rack, then
// level.
func (l LocationStock) WalkOrder() string {
	return fmt.Sprintf("%s-%04d-%04d-%02d", l.Zone, l.Aisle, l.Rack, l.Level)
}
