package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAxes(t *testing.T) {
	rows := []Row{
		{"month": "Jan", "revenue": nil},
		{"month": "Feb", "revenue": int64(200)},
	}

	assert.True(t, ValidateAxes(rows, "month", "revenue"))
	assert.False(t, ValidateAxes(rows, "month", "missing"))
	assert.False(t, ValidateAxes(nil, "month", "revenue"))
}

func TestPreparePointsFiltersAndPreservesOrder(t *testing.T) {
	rows := []Row{
		{"month": "Jan", "revenue": int64(100)},
		{"month": nil, "revenue": int64(999)},
		{"month": "Feb", "revenue": nil},
		{"month": "Mar", "revenue": 42.5},
	}

	points := PreparePoints(rows, "month", "revenue")
	require.Len(t, points, 2)

	assert.Equal(t, "Jan", points[0].Label)
	assert.Equal(t, 100.0, points[0].Y)
	assert.Equal(t, "Mar", points[1].Label)
	assert.Equal(t, 42.5, points[1].Y)
}

func TestPreparePointsCoercion(t *testing.T) {
	rows := []Row{
		{"x": int64(7), "y": "12.5"},
		{"x": 3.25, "y": "N/A"},
		{"x": true, "y": int64(9)},
	}

	points := PreparePoints(rows, "x", "y")
	require.Len(t, points, 3)

	assert.Equal(t, "7", points[0].Label)
	assert.Equal(t, 12.5, points[0].Y)

	// Non-numeric y coerces to zero instead of erroring.
	assert.Equal(t, "3.25", points[1].Label)
	assert.Equal(t, 0.0, points[1].Y)

	assert.Equal(t, "true", points[2].Label)
	assert.Equal(t, 9.0, points[2].Y)
}

func TestPreparePointsEmpty(t *testing.T) {
	points := PreparePoints([]Row{{"x": nil, "y": nil}}, "x", "y")
	assert.Empty(t, points)
	assert.NotNil(t, points)
}
