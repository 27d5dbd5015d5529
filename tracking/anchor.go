package tracking

import (
	"github.com/milk9111/vrcam/common"
	"gonum.org/v1/gonum/spatial/r3"
)

// Seat drops used when pinning an observer rig to whatever it stands on.
const (
	VehicleAnchorDrop = 1.6
	ObjectAnchorDrop  = 2.2
)

// AnchorOffset returns the attachment offset of observer relative to an
// anchor facing anchorHeading degrees, lowered by drop.
func AnchorOffset(observer, anchor r3.Vec, anchorHeading, drop float64) r3.Vec {
	local := common.WorldToLocal(r3.Sub(observer, anchor), anchorHeading)
	local.Z -= drop
	return local
}

// AnchoredPosition places a child attached at offset to an anchor.
func AnchoredPosition(anchor r3.Vec, anchorHeading float64, offset r3.Vec) r3.Vec {
	return r3.Add(anchor, common.LocalToWorld(offset, anchorHeading))
}
