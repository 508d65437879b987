// Package chart builds renderer-agnostic chart descriptors from prepared
// point series.
package chart

import (
	"strings"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
)

// Kind is the closed set of supported chart kinds. Wire strings are decoded
// once at the boundary via ParseKind; unknown values fail fast.
type Kind string

const (
	KindBar      Kind = "BAR"
	KindLine     Kind = "LINE"
	KindPie      Kind = "PIE"
	KindScatter  Kind = "SCATTER"
	KindColumn3D Kind = "COLUMN_3D"
	KindBar3D    Kind = "BAR_3D"
	KindLine3D   Kind = "LINE_3D"
)

var kinds = map[Kind]bool{
	KindBar:      true,
	KindLine:     true,
	KindPie:      true,
	KindScatter:  true,
	KindColumn3D: true,
	KindBar3D:    true,
	KindLine3D:   true,
}

// ParseKind decodes a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !kinds[k] {
		return "", apierr.Validation("unsupported chart type: " + s)
	}
	return k, nil
}

// Is3D reports whether the kind carries a depth rendering hint.
func (k Kind) Is3D() bool {
	switch k {
	case KindColumn3D, KindBar3D, KindLine3D:
		return true
	}
	return false
}

// RenderType is the lowercase type string embedded in descriptors.
func (k Kind) RenderType() string {
	return strings.ToLower(string(k))
}

func (k Kind) String() string { return string(k) }
