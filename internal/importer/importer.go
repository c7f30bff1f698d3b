// Package importer reads places and tracks from CSV, Excel, GPX and DXF files.
// Tabular imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Places   []model.Place
	Tracks   []model.Track
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Title int
	Lat   int
	Lon   int
	Icon  int
	Color int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"title": {"title", "name", "label", "place", "description", "desc"},
	"lat":   {"lat", "latitude", "y"},
	"lon":   {"lon", "lng", "long", "longitude", "x"},
	"icon":  {"icon", "symbol", "marker", "style"},
	"color": {"color", "colour", "icon color", "icon colour"},
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (Title, Lat, Lon, Icon, Color) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Title: -1, Lat: -1, Lon: -1, Icon: -1, Color: -1}
	roles := map[string]*int{
		"title": &mapping.Title,
		"lat":   &mapping.Lat,
		"lon":   &mapping.Lon,
		"icon":  &mapping.Icon,
		"color": &mapping.Color,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if idx := roles[role]; *idx == -1 {
						*idx = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Title: 0, Lat: 1, Lon: 2, Icon: 3, Color: 4}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCoordinate accepts both "51.5" and "51,5".
func parseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// parseRow extracts a Place from a row using the given column mapping.
// Returns the place, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, placeCount int) (model.Place, string, []string) {
	title := getCell(row, mapping.Title)
	if title == "" {
		title = fmt.Sprintf("Place %d", placeCount+1)
	}

	latStr := getCell(row, mapping.Lat)
	if latStr == "" {
		return model.Place{}, fmt.Sprintf("%s: Missing latitude value", rowLabel), nil
	}
	lat, err := parseCoordinate(latStr)
	if err != nil {
		return model.Place{}, fmt.Sprintf("%s: Invalid latitude '%s'", rowLabel, latStr), nil
	}

	lonStr := getCell(row, mapping.Lon)
	if lonStr == "" {
		return model.Place{}, fmt.Sprintf("%s: Missing longitude value", rowLabel), nil
	}
	lon, err := parseCoordinate(lonStr)
	if err != nil {
		return model.Place{}, fmt.Sprintf("%s: Invalid longitude '%s'", rowLabel, lonStr), nil
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return model.Place{}, fmt.Sprintf("%s: Coordinates (%g, %g) out of range", rowLabel, lat, lon), nil
	}

	place := model.NewPlace(title, model.LatLng{Lat: lat, Lon: lon})

	var warnings []string
	if iconStr := getCell(row, mapping.Icon); iconStr != "" {
		if icon, ok := model.ParseIconStyle(iconStr); ok {
			place.Icon = icon
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown icon '%s', defaulting to pin", rowLabel, iconStr))
		}
	}
	if colorStr := getCell(row, mapping.Color); colorStr != "" {
		if hexColor.MatchString(colorStr) {
			place.IconColor = colorStr
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid colour '%s', keeping default", rowLabel, colorStr))
		}
	}

	return place, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportPlacesCSV imports places from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportPlacesCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportPlacesCSVFromReader imports places from a CSV reader with a known delimiter.
func ImportPlacesCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportPlacesExcel imports places from the first sheet of an Excel file.
func ImportPlacesExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Lat == -1 {
			missing = append(missing, "Latitude")
		}
		if mapping.Lon == -1 {
			missing = append(missing, "Longitude")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognised header still has a non-numeric latitude column
		if _, err := parseCoordinate(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		place, errMsg, warnings := parseRow(row, mapping, rowLabel, len(result.Places))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Places = append(result.Places, place)
	}

	return result
}
