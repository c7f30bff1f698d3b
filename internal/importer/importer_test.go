package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Title,Lat,Lon\nSummit,51.5,-0.12\nHut,51.4,-0.2\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Title;Lat;Lon\nSummit;51.5;-0.12\nHut;51.4;-0.2\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Title\tLat\tLon\nSummit\t51.5\t-0.12\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Title|Lat|Lon\nSummit|51.5|-0.12\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Title", "Lat", "Lon", "Icon", "Color"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Title: 0, Lat: 1, Lon: 2, Icon: 3, Color: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, ok := DetectColumns([]string{" LONGITUDE ", "Latitude", "Name", "Colour"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.Lon != 0 || mapping.Lat != 1 || mapping.Title != 2 || mapping.Color != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Icon != -1 {
		t.Errorf("expected no icon column, got %d", mapping.Icon)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Summit", "51.5", "-0.12"})
	if ok {
		t.Error("expected no header")
	}
	want := ColumnMapping{Title: 0, Lat: 1, Lon: 2, Icon: 3, Color: 4}
	if mapping != want {
		t.Errorf("expected positional mapping %+v, got %+v", want, mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportPlacesCSVFromReader_WithHeaders(t *testing.T) {
	data := "Name,Latitude,Longitude,Icon,Colour\nSummit,51.5,-0.12,star,#00ff00\nHut,51.4,-0.2,,\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(result.Places))
	}

	p := result.Places[0]
	if p.Title != "Summit" {
		t.Errorf("expected title 'Summit', got '%s'", p.Title)
	}
	if p.Position.Lat != 51.5 || p.Position.Lon != -0.12 {
		t.Errorf("unexpected position %+v", p.Position)
	}
	if p.Icon != model.IconStar {
		t.Errorf("expected star icon, got %s", p.Icon)
	}
	if p.IconColor != "#00ff00" {
		t.Errorf("expected colour #00ff00, got %s", p.IconColor)
	}
	if !p.Visible || !p.ShowIcon {
		t.Error("imported places should be visible with their icon shown")
	}

	if result.Places[1].Icon != model.IconPin {
		t.Errorf("expected default pin icon, got %s", result.Places[1].Icon)
	}
}

func TestImportPlacesCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "Summit,51.5,-0.12\nHut,51.4,-0.2,flag\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 2 {
		t.Fatalf("expected 2 places, got %d (errors: %v)", len(result.Places), result.Errors)
	}
	if result.Places[1].Icon != model.IconFlag {
		t.Errorf("expected flag icon, got %s", result.Places[1].Icon)
	}
}

func TestImportPlacesCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	data := "Spot,Northing,Easting\nSummit,51.5,-0.12\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 1 {
		t.Fatalf("expected 1 place, got %d (errors: %v)", len(result.Places), result.Errors)
	}
	if result.Places[0].Title != "Summit" {
		t.Errorf("expected 'Summit', got '%s'", result.Places[0].Title)
	}
}

func TestImportPlacesCSVFromReader_EmptyTitle(t *testing.T) {
	data := "Title,Lat,Lon\n,51.5,-0.12\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(result.Places))
	}
	if result.Places[0].Title != "Place 1" {
		t.Errorf("expected generated title 'Place 1', got '%s'", result.Places[0].Title)
	}
}

func TestImportPlacesCSVFromReader_InvalidLatitude(t *testing.T) {
	data := "Title,Lat,Lon\nSummit,abc,-0.12\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid latitude") {
		t.Errorf("expected invalid latitude error, got %v", result.Errors)
	}
	if len(result.Places) != 0 {
		t.Errorf("expected no places, got %d", len(result.Places))
	}
}

func TestImportPlacesCSVFromReader_OutOfRange(t *testing.T) {
	data := "Title,Lat,Lon\nNowhere,95,10\nElsewhere,10,190\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 2 {
		t.Errorf("expected 2 range errors, got %v", result.Errors)
	}
	for _, e := range result.Errors {
		if !strings.Contains(e, "out of range") {
			t.Errorf("unexpected error %q", e)
		}
	}
}

func TestImportPlacesCSVFromReader_MissingLongitude(t *testing.T) {
	data := "Title,Lat,Lon\nSummit,51.5,\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Missing longitude") {
		t.Errorf("expected missing longitude error, got %v", result.Errors)
	}
}

func TestImportPlacesCSVFromReader_UnknownIconAndColour(t *testing.T) {
	data := "Title,Lat,Lon,Icon,Color\nCamp,51.5,-0.12,tent,red\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(result.Places))
	}
	if result.Places[0].Icon != model.IconPin {
		t.Errorf("expected fallback pin icon, got %s", result.Places[0].Icon)
	}
	if result.Places[0].IconColor != model.NewPlace("", model.LatLng{}).IconColor {
		t.Errorf("expected default colour, got %s", result.Places[0].IconColor)
	}

	var iconWarning, colourWarning bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "Unknown icon 'tent'") {
			iconWarning = true
		}
		if strings.Contains(w, "Invalid colour 'red'") {
			colourWarning = true
		}
	}
	if !iconWarning || !colourWarning {
		t.Errorf("expected icon and colour warnings, got %v", result.Warnings)
	}
}

func TestImportPlacesCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Title,Lat,Lon\nGood,51.5,-0.12\nBad,north,-0.12\nAlso good,51.4,-0.2\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 2 {
		t.Errorf("expected 2 places, got %d", len(result.Places))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportPlacesCSVFromReader_EmptyRows(t *testing.T) {
	data := "Title,Lat,Lon\nSummit,51.5,-0.12\n,,\nHut,51.4,-0.2\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Places) != 2 {
		t.Errorf("expected 2 places, got %d (errors: %v)", len(result.Places), result.Errors)
	}
}

func TestImportPlacesCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Title,Lat\nSummit,51.5\n"
	result := ImportPlacesCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Longitude") {
		t.Errorf("expected missing longitude column error, got %v", result.Errors)
	}
}

func TestImportPlacesCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportPlacesCSVFromReader(strings.NewReader(""), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportPlacesCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.csv")
	content := "Title;Lat;Lon\nSummit;51.5;-0.12\nHut;51.4;-0.2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportPlacesCSV(path)

	if len(result.Places) != 2 {
		t.Errorf("expected 2 places, got %d (errors: %v)", len(result.Places), result.Errors)
	}

	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportPlacesCSV_FileNotFound(t *testing.T) {
	result := ImportPlacesCSV("/nonexistent/path/places.csv")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportPlacesCSV_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportPlacesCSV(path)

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "places.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportPlacesExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Title", "Lat", "Lon", "Icon"},
		{"Summit", 51.5, -0.12, "dot"},
		{"Hut", 51.4, -0.2, "circle"},
	})

	result := ImportPlacesExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(result.Places))
	}
	if result.Places[0].Title != "Summit" {
		t.Errorf("expected 'Summit', got '%s'", result.Places[0].Title)
	}
	if result.Places[0].Position.Lat != 51.5 {
		t.Errorf("expected latitude 51.5, got %f", result.Places[0].Position.Lat)
	}
	if result.Places[1].Icon != model.IconCircle {
		t.Errorf("expected circle icon, got %s", result.Places[1].Icon)
	}
}

func TestImportPlacesExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Summit", 51.5, -0.12},
		{"Hut", 51.4, -0.2},
	})

	result := ImportPlacesExcel(path)

	if len(result.Places) != 2 {
		t.Fatalf("expected 2 places, got %d (errors: %v)", len(result.Places), result.Errors)
	}
}

func TestImportPlacesExcel_FileNotFound(t *testing.T) {
	result := ImportPlacesExcel("/nonexistent/path/places.xlsx")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}
