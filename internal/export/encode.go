package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/skip2/go-qrcode"
)

// EncodeOptions controls how a composite is written out.
type EncodeOptions struct {
	Format      model.OutputFormat
	JPEGQuality int // 1-100, 0 means 90

	// PDF sheet details
	Title       string
	Attribution string
	Bounds      model.GeoBounds
	Zoom        int
}

// Page layout constants (A4 in mm).
const (
	pageShort    = 210.0
	pageLong     = 297.0
	pageMargin   = 12.0
	headerHeight = 10.0
	footerHeight = 24.0
	qrSize       = 20.0
)

// Encode writes img to w in opts.Format.
func Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	switch opts.Format {
	case model.FormatJPEG:
		return EncodeJPEG(w, img, opts.JPEGQuality)
	case model.FormatPDF:
		return EncodePDF(w, img, opts)
	case model.FormatPNG, "":
		return EncodePNG(w, img)
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding JPEG: %w", err)
	}
	return nil
}

// EncodePDF lays the composite out on an A4 sheet, oriented to match the
// image, with a title, the tile attribution, the export bounds and a QR code
// linking to the export centre on openstreetmap.org.
func EncodePDF(w io.Writer, img image.Image, opts EncodeOptions) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("encoding PDF: empty image")
	}

	orientation, pw, ph := "P", pageShort, pageLong
	if b.Dx() > b.Dy() {
		orientation, pw, ph = "L", pageLong, pageShort
	}

	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("StrataLines", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := opts.Title
	if title == "" {
		title = "Map export"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.CellFormat(pw-2*pageMargin, headerHeight, tr(title), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding PDF image: %w", err)
	}
	pdf.RegisterImageOptionsReader("map", fpdf.ImageOptions{ImageType: "PNG"}, &buf)

	// Fit the image into the area between header and footer
	areaW := pw - 2*pageMargin
	areaH := ph - 2*pageMargin - headerHeight - footerHeight
	scale := min(areaW/float64(b.Dx()), areaH/float64(b.Dy()))
	imgW := float64(b.Dx()) * scale
	imgH := float64(b.Dy()) * scale
	imgX := pageMargin + (areaW-imgW)/2
	imgY := pageMargin + headerHeight
	pdf.ImageOptions("map", imgX, imgY, imgW, imgH, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Rect(imgX, imgY, imgW, imgH, "D")

	footerY := ph - pageMargin - footerHeight + 2
	textW := pw - 2*pageMargin - qrSize - 4

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetXY(pageMargin, footerY)
	if opts.Attribution != "" {
		pdf.MultiCell(textW, 4, tr(opts.Attribution), "", "L", false)
	}
	if !opts.Bounds.IsDegenerate() {
		pdf.SetX(pageMargin)
		bounds := fmt.Sprintf("N %.5f  S %.5f  E %.5f  W %.5f  |  zoom %d  |  %d x %d px",
			opts.Bounds.North, opts.Bounds.South, opts.Bounds.East, opts.Bounds.West, opts.Zoom, b.Dx(), b.Dy())
		pdf.CellFormat(textW, 4, bounds, "", 1, "L", false, 0, "")

		link := OSMLink(opts.Bounds.Center(), opts.Zoom)
		qrPNG, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("failed to generate QR code: %w", err)
		}
		pdf.RegisterImageOptionsReader("qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", pw-pageMargin-qrSize, footerY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// OSMLink returns an openstreetmap.org URL centred on c.
func OSMLink(c model.LatLng, zoom int) string {
	if zoom <= 0 {
		zoom = 12
	}
	return fmt.Sprintf("https://www.openstreetmap.org/#map=%d/%.5f/%.5f", zoom, c.Lat, c.Lon)
}

// SaveImage encodes img to path. When opts.Format is empty it is taken from
// the file extension.
func SaveImage(path string, img image.Image, opts EncodeOptions) error {
	if opts.Format == "" {
		f, ok := model.ParseOutputFormat(filepath.Ext(path))
		if !ok {
			return fmt.Errorf("cannot infer output format from %q", path)
		}
		opts.Format = f
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
