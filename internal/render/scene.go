package render

import (
	"context"
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/software"
	"fyne.io/fyne/v2/test"
	"golang.org/x/image/draw"
)

var sceneApp sync.Once

// ensureApp makes sure a fyne app exists so canvas objects can be painted
// outside a running GUI.
func ensureApp() {
	sceneApp.Do(func() {
		if fyne.CurrentApp() == nil {
			test.NewApp()
		}
	})
}

// Scene builds the base map as a fyne canvas scene (a background rectangle
// plus one image object per tile) and captures it with the software painter,
// the way a window screenshot would.
type Scene struct {
	opts Options
	mu   sync.Mutex
}

func NewScene(opts Options) *Scene {
	return &Scene{opts: opts.withDefaults()}
}

func (s *Scene) Name() string { return BackendScene }

// Background returns the colour untouched pixels keep.
func (s *Scene) Background() color.Color { return s.opts.Background }

// RenderBase implements Renderer.
func (s *Scene) RenderBase(ctx context.Context, req BaseRequest) (*image.RGBA, error) {
	layer, err := resolveLayer(s.opts.Layers, req)
	if err != nil {
		return nil, err
	}

	size := fyne.NewSize(float32(req.Size.X), float32(req.Size.Y))
	bg := canvas.NewRectangle(s.opts.Background)
	bg.Resize(size)
	objects := []fyne.CanvasObject{bg}

	err = fetchTiles(ctx, s.opts, layer, req, func(pt placedTile, tile image.Image) {
		img := canvas.NewImageFromImage(tile)
		img.FillMode = canvas.ImageFillStretch
		img.ScaleMode = canvas.ImageScalePixels
		img.Move(fyne.NewPos(float32(pt.dst.Min.X), float32(pt.dst.Min.Y)))
		img.Resize(fyne.NewSize(float32(pt.dst.Dx()), float32(pt.dst.Dy())))
		objects = append(objects, img)
	})
	if err != nil {
		return nil, err
	}

	shot := s.capture(container.NewWithoutLayout(objects...), size)

	dst := image.NewRGBA(image.Rect(0, 0, req.Size.X, req.Size.Y))
	if sb := shot.Bounds(); sb.Dx() == req.Size.X && sb.Dy() == req.Size.Y {
		draw.Draw(dst, dst.Bounds(), shot, sb.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), shot, sb, draw.Src, nil)
	}
	return dst, nil
}

func (s *Scene) capture(content fyne.CanvasObject, size fyne.Size) image.Image {
	ensureApp()
	s.mu.Lock()
	defer s.mu.Unlock()

	c := software.NewCanvas()
	c.SetPadded(false)
	c.SetContent(content)
	c.Resize(size)
	return c.Capture()
}

// RenderTracks implements Renderer. Lines go onto a transparent overlay, so
// they are stroked directly rather than through the scene.
func (s *Scene) RenderTracks(dst *image.RGBA, lines []Polyline) error {
	DrawPolylines(dst, lines)
	return nil
}
