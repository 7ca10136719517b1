package catalog

import "github.com/mirandola/podforge/internal/printful"

// positions maps placement types to their relative-coordinate boxes.
// Values were tuned against live products; sleeve and wrist placements
// sit low on purpose. Placements without an entry use the vendor's
// default positioning.
var positions = map[string]printful.PositionBox{
	// Hats.
	"embroidery_front": {
		AreaWidth: 12.0, AreaHeight: 8.0,
		Width: 5.0, Height: 4.0,
		Top: 2.5, Left: 1.5,
		LimitToPrintArea: true,
	},
	"embroidery_left": {
		AreaWidth: 8.0, AreaHeight: 6.0,
		Width: 3.0, Height: 2.5,
		Top: 1.5, Left: 2.5,
		LimitToPrintArea: true,
	},
	"embroidery_right": {
		AreaWidth: 8.0, AreaHeight: 6.0,
		Width: 3.0, Height: 2.5,
		Top: 1.5, Left: 2.5,
		LimitToPrintArea: true,
	},

	// Sleeves and wrists.
	"embroidery_sleeve_left_top": {
		AreaWidth: 10.0, AreaHeight: 15.0,
		Width: 3.0, Height: 3.0,
		Top: 9.5, Left: 3.5,
	},
	"embroidery_sleeve_right_top": {
		AreaWidth: 10.0, AreaHeight: 15.0,
		Width: 3.0, Height: 3.0,
		Top: 9.5, Left: 3.5,
	},
	"embroidery_wrist_left": {
		AreaWidth: 8.0, AreaHeight: 12.0,
		Width: 2.4, Height: 2.4,
		Top: 7.6, Left: 2.8,
	},
	"embroidery_wrist_right": {
		AreaWidth: 8.0, AreaHeight: 12.0,
		Width: 2.4, Height: 2.4,
		Top: 7.6, Left: 2.8,
	},

	// Chest.
	"embroidery_chest_left": {
		AreaWidth: 18.0, AreaHeight: 24.0,
		Width: 2.0, Height: 2.0,
		Top: 3.0, Left: 4.0,
		LimitToPrintArea: true,
	},
	"embroidery_chest_right": {
		AreaWidth: 18.0, AreaHeight: 24.0,
		Width: 4.0, Height: 4.0,
		Top: 3.0, Left: 10.0,
		LimitToPrintArea: true,
	},
	"embroidery_chest_center": {
		AreaWidth: 18.0, AreaHeight: 24.0,
		Width: 5.0, Height: 5.0,
		Top: 4.0, Left: 6.5,
		LimitToPrintArea: true,
	},
}

// PositionFor returns the position box configured for a placement type.
// The returned box is a value copy; mutating it never touches the
// catalog.
func PositionFor(placementType string) (printful.PositionBox, bool) {
	box, ok := positions[placementType]
	return box, ok
}
