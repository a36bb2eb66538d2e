package compose

import (
	"context"
	"image"
	"testing"

	"github.com/matzehuels/photobooth/pkg/decor"
	"github.com/matzehuels/photobooth/pkg/errors"
	"github.com/matzehuels/photobooth/pkg/layout"
)

func TestPreviewerSupersedes(t *testing.T) {
	d := layout.Default.Resolve("2h")
	images := []image.Image{solid(8, 8, red), solid(8, 8, red)}
	bl := &blockingLoader{started: make(chan struct{}, 1)}
	p := NewPreviewer(New(WithLoader(bl)))

	first := make(chan error, 1)
	go func() {
		_, err := p.Render(context.Background(), Request{
			Images: images,
			Layout: d,
			Decor:  decor.Set{Stickers: []decor.Placement{{Sticker: "stars"}}},
		})
		first <- err
	}()
	<-bl.started

	res, err := p.Render(context.Background(), Request{Images: images, Layout: d})
	if err != nil {
		t.Fatalf("latest render: %v", err)
	}
	if len(res.PNG) == 0 {
		t.Error("latest render produced no output")
	}
	if err := <-first; !errors.Is(err, errors.ErrCodeSuperseded) {
		t.Errorf("superseded render err = %v, want SUPERSEDED", err)
	}
}

func TestPreviewerCancel(t *testing.T) {
	d := layout.Default.Resolve("2h")
	images := []image.Image{solid(8, 8, red), solid(8, 8, red)}
	bl := &blockingLoader{started: make(chan struct{}, 1)}
	p := NewPreviewer(New(WithLoader(bl)))

	done := make(chan error, 1)
	go func() {
		_, err := p.Render(context.Background(), Request{
			Images: images,
			Layout: d,
			Decor:  decor.Set{Overlay: "classic"},
		})
		done <- err
	}()
	<-bl.started
	p.Cancel()

	if err := <-done; !errors.Is(err, errors.ErrCodeSuperseded) {
		t.Errorf("canceled render err = %v, want SUPERSEDED", err)
	}

	// The previewer stays usable.
	if _, err := p.Render(context.Background(), Request{Images: images, Layout: d}); err != nil {
		t.Errorf("render after cancel: %v", err)
	}
}
