package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"BAR", KindBar},
		{"bar", KindBar},
		{" line ", KindLine},
		{"Pie", KindPie},
		{"scatter", KindScatter},
		{"column_3d", KindColumn3D},
		{"BAR_3D", KindBar3D},
		{"line_3d", KindLine3D},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "AREA", "bar3d", "COLUMN", "radar"} {
		_, err := ParseKind(in)
		assert.Error(t, err, in)
	}
}

func TestIs3D(t *testing.T) {
	assert.True(t, KindColumn3D.Is3D())
	assert.True(t, KindBar3D.Is3D())
	assert.True(t, KindLine3D.Is3D())

	assert.False(t, KindBar.Is3D())
	assert.False(t, KindLine.Is3D())
	assert.False(t, KindPie.Is3D())
	assert.False(t, KindScatter.Is3D())
}

func TestRenderType(t *testing.T) {
	assert.Equal(t, "bar", KindBar.RenderType())
	assert.Equal(t, "column_3d", KindColumn3D.RenderType())
}
