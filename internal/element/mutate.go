package element

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Updates is a partial element update. Nil fields are left untouched.
type Updates struct {
	X            *float64
	Y            *float64
	Width        *float64
	Height       *float64
	Points       []Point
	FontSize     *float64
	Text         *string
	FrameID      *string
	StartBinding *Binding
	EndBinding   *Binding
}

// F returns a pointer to v, for building Updates inline.
func F(v float64) *float64 { return &v }

// S returns a pointer to v, for building Updates inline.
func S(v string) *string { return &v }

// Mutate applies u to el in place. Version bookkeeping is only touched when
// a field actually changes; the return value reports whether one did.
func Mutate(el *Element, u Updates) bool {
	changed := false

	setFloat := func(dst *float64, v *float64) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	setString := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}

	setFloat(&el.X, u.X)
	setFloat(&el.Y, u.Y)
	setFloat(&el.Width, u.Width)
	setFloat(&el.Height, u.Height)
	setFloat(&el.FontSize, u.FontSize)
	setString(&el.Text, u.Text)
	setString(&el.FrameID, u.FrameID)

	if u.Points != nil && !slices.Equal(el.Points, u.Points) {
		el.Points = append([]Point(nil), u.Points...)
		changed = true
	}
	if u.StartBinding != nil && (el.StartBinding == nil || *el.StartBinding != *u.StartBinding) {
		b := *u.StartBinding
		el.StartBinding = &b
		changed = true
	}
	if u.EndBinding != nil && (el.EndBinding == nil || *el.EndBinding != *u.EndBinding) {
		b := *u.EndBinding
		el.EndBinding = &b
		changed = true
	}

	if changed {
		el.Version++
		el.VersionNonce = rand.Int64()
		el.Updated = time.Now().UnixMilli()
	}
	return changed
}
