package compose_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/matzehuels/photobooth/pkg/compose"
	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/layout"
)

func ExampleCanvasSize() {
	for _, d := range layout.Default.All() {
		w, h := compose.CanvasSize(d)
		fmt.Printf("%s %dx%d\n", d.ID, w, h)
	}
	// Output:
	// 2h 448x700
	// 3v 448x1012
	// 4v 448x1324
	// 4g 860x700
	// 6g 860x1012
	// 9g 1272x1012
}

func ExampleGridPosition() {
	d := layout.Default.Resolve("4g")
	for i := 0; i < d.PhotoCount; i++ {
		col, row := compose.GridPosition(d, i)
		fmt.Printf("photo %d: col %d row %d at %v\n", i, col, row, compose.CellRect(d, i).Min)
	}
	// Output:
	// photo 0: col 0 row 0 at (24,24)
	// photo 1: col 1 row 0 at (436,24)
	// photo 2: col 0 row 1 at (24,336)
	// photo 3: col 1 row 1 at (436,336)
}

func ExampleCompositor_ComposeImages() {
	d := layout.Default.Resolve("2h")
	photo := image.NewUniform(color.NRGBA{R: 200, G: 120, B: 80, A: 255})
	images := []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 640, 480)),
		&boundedUniform{Uniform: photo, r: image.Rect(0, 0, 480, 640)},
	}

	c := compose.New(compose.WithClock(func() time.Time {
		return time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	}))
	res, err := c.ComposeImages(context.Background(), images, d, decor.Set{
		Filter:     "sepia",
		FrameColor: "pink",
		Stickers:   []decor.Placement{{Sticker: "hearts"}},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%dx%d, %d skipped\n", res.Width, res.Height, len(res.Skipped))
	// Output: 448x700, 0 skipped
}

// boundedUniform is a uniform color with finite bounds.
type boundedUniform struct {
	*image.Uniform
	r image.Rectangle
}

func (b *boundedUniform) Bounds() image.Rectangle { return b.r }
