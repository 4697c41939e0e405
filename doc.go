/*
Package brush is a raster mask editing engine for image annotation tools.

A Mask owns a full image sized draft canvas on which freehand strokes are
painted or erased with a round brush, closed regions are flood filled and
every completed stroke is snapshotted into a bounded undo history. The
bounding box of the painted pixels is maintained incrementally, so that
finalizing a mask only has to crop the draft to the tracked bounds.

The package also provides a live preview renderer, an input session which
translates pointer events into engine calls and a labelme compatible shape
record for persisting the finalized masks.

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"image"

		"github.com/maskbrush/brush"
	)

	func main() {
		m, err := brush.NewMask(640, 480, nil)
		if err != nil {
			panic(err)
		}
		m.SetBrushSize(8)
		m.DrawSegment(brush.Pt(10, 10), brush.Pt(120, 40), brush.Paint)
		m.CommitStroke()

		crop, rect, err := m.Finalize()
		if err != nil {
			fmt.Printf("Error finalizing the mask: %s", err.Error())
			return
		}
		fmt.Println(crop.Width(), crop.Height(), rect.Image(), image.Pt(0, 0))
	}

The command line tool replays pointer event scripts against an image:

	$ brushmask --help
*/
package brush
