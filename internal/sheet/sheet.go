// Package sheet computes frame geometry over universal-layout sprite sheets
// and the draw order for stacked layers.
package sheet

import (
	"fmt"
	"sort"
	"strings"

	"spritedb/internal/store"
)

// Geometry describes one sprite sheet: its pixel dimensions, the size of a
// single frame, and how many frames each animation row holds.
type Geometry struct {
	SheetWidth   int
	SheetHeight  int
	FrameWidth   int
	FrameHeight  int
	FramesPerRow int
}

// Rect is a frame cutout in sheet pixel coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DirectionMap resolves a facing name to its 1-based sheet row.
type DirectionMap map[string]int

// Row returns the 1-based row index for a direction name.
func (m DirectionMap) Row(direction string) (int, error) {
	row, ok := m[strings.ToLower(strings.TrimSpace(direction))]
	if !ok {
		return 0, fmt.Errorf("unknown direction: %s", direction)
	}
	return row, nil
}

// FrameRect returns the cutout for a 1-based (directionIndex, frameIndex)
// pair. A frame index past the row's last column clamps to the first frame
// of the row so a short animation never produces an out-of-bounds rectangle.
func FrameRect(geom Geometry, directionIndex, frameIndex int) (Rect, error) {
	if geom.FrameWidth < 1 || geom.FrameHeight < 1 {
		return Rect{}, fmt.Errorf("frame dimensions must be positive")
	}
	if geom.FramesPerRow < 1 {
		return Rect{}, fmt.Errorf("frames per row must be positive")
	}
	if directionIndex < 1 {
		return Rect{}, fmt.Errorf("direction index %d out of range", directionIndex)
	}
	if frameIndex < 1 {
		frameIndex = 1
	}

	column := (frameIndex - 1) % geom.FramesPerRow
	row := directionIndex - 1

	rect := Rect{
		X:      column * geom.FrameWidth,
		Y:      row * geom.FrameHeight,
		Width:  geom.FrameWidth,
		Height: geom.FrameHeight,
	}

	if geom.SheetWidth > 0 && rect.X+rect.Width > geom.SheetWidth {
		rect.X = 0
	}
	if geom.SheetHeight > 0 && rect.Y+rect.Height > geom.SheetHeight {
		return Rect{}, fmt.Errorf("direction row %d exceeds sheet height %d", directionIndex, geom.SheetHeight)
	}

	return rect, nil
}

// SortLayers orders draw instructions ascending by z position, ties broken
// by layer number. Lower z renders first and appears behind.
func SortLayers(refs []store.AssetRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].ZPosition != refs[j].ZPosition {
			return refs[i].ZPosition < refs[j].ZPosition
		}
		return refs[i].LayerNumber < refs[j].LayerNumber
	})
}
