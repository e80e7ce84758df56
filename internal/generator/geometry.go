package generator

import "math"

// Fixed layout geometry: storage and launchpad anchor the center, production
// slots sit in two side blocks of three rows each. Coordinates are
// latitude/longitude offsets from the storage anchor.
const (
	storageLat   = 0.0
	storageLon   = 0.0
	launchpadLat = 0.08
	launchpadLon = 0.0

	rowSpacing = 0.06
	colSpacing = 0.06
	sideOffset = 0.05

	numRows   = 3
	colsLeft  = 4
	colsRight = 3

	// TotalSlots is the fixed production capacity of the generated layout.
	TotalSlots = numRows * (colsLeft + colsRight)
)

// slot is one pre-computed production position.
type slot struct {
	lat float64
	lon float64
}

// slotRows holds the production slots grouped by row, each row ordered
// nearest-to-anchor first: the left block from the innermost column out,
// then the right block the same way.
var slotRows = buildSlotRows()

func buildSlotRows() [numRows][]slot {
	rowLats := [numRows]float64{
		round2(storageLat + rowSpacing),
		round2(storageLat),
		round2(storageLat - rowSpacing),
	}

	var rows [numRows][]slot
	for r, lat := range rowLats {
		for c := 0; c < colsLeft; c++ {
			rows[r] = append(rows[r], slot{lat: lat, lon: round2(storageLon - sideOffset - float64(c)*colSpacing)})
		}
		for c := 0; c < colsRight; c++ {
			rows[r] = append(rows[r], slot{lat: lat, lon: round2(storageLon + sideOffset + float64(c)*colSpacing)})
		}
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
