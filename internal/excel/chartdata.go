package excel

import (
	"strconv"
)

// Point is a single chart point derived from a row: the raw x value, the
// numerically coerced y value, and a display label.
type Point struct {
	X     any     `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// ValidateAxes reports whether at least one row carries non-null values for
// both axis fields. Tables where only some rows qualify are still valid.
func ValidateAxes(rows []Row, xAxis, yAxis string) bool {
	for _, row := range rows {
		if row[xAxis] != nil && row[yAxis] != nil {
			return true
		}
	}
	return false
}

// PreparePoints filters rows to those with both axis fields present and maps
// each to a Point, preserving row order. Unparsable y-values coerce to 0
// rather than failing.
func PreparePoints(rows []Row, xAxis, yAxis string) []Point {
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		x, y := row[xAxis], row[yAxis]
		if x == nil || y == nil {
			continue
		}
		points = append(points, Point{
			X:     x,
			Y:     coerceFloat(y),
			Label: coerceString(x),
		})
	}
	return points
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return 0
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}
