package render

// All measures are millimetres on an A4 portrait page.
const (
	pageLimitY   = 270.0
	wrapWidthMM  = 165.0
	lineHeightMM = 4.0

	taskRowsStartY   = 70.0
	taskNewPageY     = 15.0
	taskRowGapMM     = 3.0
	taskPhotoBlockMM = 4.0 + 22.0 + 2.0
	materialRowsTopY = 105.0
	materialNewPageY = 28.0
	materialWrapMM   = 145.0
	materialMinRowMM = 12.0
	materialLineMM   = 5.0
	materialRowPadMM = 4.0
)

// placement is where a row starts: 1-based page and top y.
type placement struct {
	Page int
	Y    float64
}

/*
taskRowHeight is the exact height of one task row:

	top padding 2, first line 4, client 4 (single-site reports only),
	site 4, type 4, gap 5, title gap 2, 4 per description line,
	gap 6, title gap 2, 4 per materials line (4 for "N/A" when none),
	photo block 4+22+2 when present, bottom padding 4.
*/
func taskRowHeight(descriptionLines int, materialLines int, showClient bool, hasPhoto bool) float64 {
	height := 2.0 + 4.0
	if showClient {
		height += 4
	}
	height += 4 + 4
	height += 5 + 2 + float64(descriptionLines)*lineHeightMM
	height += 6 + 2
	if materialLines > 0 {
		height += float64(materialLines) * lineHeightMM
	} else {
		height += lineHeightMM
	}
	if hasPhoto {
		height += taskPhotoBlockMM
	}
	return height + 4
}

func materialRowHeight(lines int) float64 {
	return max(materialMinRowMM, float64(lines)*materialLineMM+materialRowPadMM)
}

/*
placeRows assigns each row a page and a top y.

A row that would end below pageLimitY starts a new page at newPageY; rows
never split across pages. gap is added after every row.
*/
func placeRows(heights []float64, startY float64, newPageY float64, gap float64) []placement {
	placements := make([]placement, len(heights))
	page := 1
	y := startY

	for i, height := range heights {
		if y+height > pageLimitY {
			page++
			y = newPageY
		}
		placements[i] = placement{Page: page, Y: y}
		y += height + gap
	}
	return placements
}

func pageCount(placements []placement) int {
	if len(placements) == 0 {
		return 1
	}
	return placements[len(placements)-1].Page
}
