package odontogram

import (
	"fmt"
	"html/template"
	"strings"

	"odonto-console/internal/models"
)

var statusColors = map[models.ToothStatus]string{
	models.ToothHealthy:    "#FFFFFF",
	models.ToothCaries:     "#EF4444",
	models.ToothFilling:    "#3B82F6",
	models.ToothRootCanal:  "#8B5CF6",
	models.ToothProsthesis: "#F59E0B",
	models.ToothImplant:    "#06B6D4",
	models.ToothExtracted:  "#6B7280",
	models.ToothMissing:    "#D1D5DB",
	models.ToothFracture:   "#DC2626",
}

var faceBadgeColors = map[models.Face]string{
	models.FaceOcclusal: "#EF4444",
	models.FaceBuccal:   "#F97316",
	models.FaceLingual:  "#EAB308",
	models.FaceMesial:   "#3B82F6",
	models.FaceDistal:   "#A855F7",
}

const (
	unrecordedColor = "#FFFFFF"
	defaultFaceFill = "#EF4444"
	occlusalIdle    = "#E8E8E8"
	rootColor       = "#F5E6D3"
)

// StatusColor returns the fill for a condition; unknown statuses render as unrecorded.
func StatusColor(s models.ToothStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return unrecordedColor
}

func FaceBadgeColor(f models.Face) string {
	return faceBadgeColors[f]
}

type outline struct {
	width, height int
	root          string
	occlusal      string
	crown         string
	mesial        string
	distal        string
	lingual       [4]float64 // cx, cy, rx, ry
}

var outlines = map[Shape]outline{
	Incisor: {
		width: 45, height: 70,
		root:     "M15 50 Q15 65 22.5 70 Q30 65 30 50 Z",
		occlusal: "M10 8 Q10 5 12 4 L33 4 Q35 5 35 8 Z",
		crown:    "M12 8 L12 35 Q12 45 15 50 L30 50 Q33 45 33 35 L33 8 Q32 6 30 6 L15 6 Q13 6 12 8 Z",
		mesial:   "M10 8 L12 8 L15 50 L13 50 Z",
		distal:   "M33 8 L35 8 L32 50 L30 50 Z",
		lingual:  [4]float64{22.5, 25, 8, 20},
	},
	Canine: {
		width: 48, height: 75,
		root:     "M16 55 Q16 68 24 75 Q32 68 32 55 Z",
		occlusal: "M20 6 L24 3 L28 6 Z",
		crown:    "M24 3 L14 10 Q12 12 12 18 L12 40 Q12 50 16 55 L32 55 Q36 50 36 40 L36 18 Q36 12 34 10 Z",
		mesial:   "M12 18 L14 10 L16 55 L12 40 Z",
		distal:   "M36 18 L34 10 L32 55 L36 40 Z",
		lingual:  [4]float64{24, 28, 9, 22},
	},
	Premolar: {
		width: 52, height: 68,
		root:     "M18 50 Q18 63 26 68 Q34 63 34 50 Z",
		occlusal: "M14 8 Q12 6 14 5 L20 4 Q22 5 22 7 L30 7 Q30 5 32 4 L38 5 Q40 6 38 8 L36 10 L16 10 Z",
		crown:    "M14 10 L13 30 Q13 42 18 50 L34 50 Q39 42 39 30 L38 10 Q38 8 36 8 L16 8 Q14 8 14 10 Z",
		mesial:   "M12 10 L14 10 L18 50 L16 50 Z",
		distal:   "M38 10 L40 10 L36 50 L34 50 Z",
		lingual:  [4]float64{26, 25, 10, 18},
	},
	Molar: {
		width: 58, height: 65,
		root:     "M18 48 Q16 58 20 65 L24 65 Q22 56 29 48 Z M29 48 Q36 56 34 65 L38 65 Q42 58 40 48 Z",
		occlusal: "M12 9 Q10 7 12 6 L18 5 Q20 6 20 8 L23 8 L23 5 Q25 4 27 4 L31 4 Q33 4 35 5 L35 8 L38 8 Q38 6 40 5 L46 6 Q48 7 46 9 L44 12 L14 12 Z",
		crown:    "M12 12 L11 32 Q11 42 18 48 L40 48 Q47 42 47 32 L46 12 Q45 10 43 10 L15 10 Q13 10 12 12 Z",
		mesial:   "M10 12 L12 12 L18 48 L16 48 Z",
		distal:   "M46 12 L48 12 L42 48 L40 48 Z",
		lingual:  [4]float64{29, 26, 12, 18},
	},
}

// RenderTooth draws one chart slot as inline SVG. Lower teeth are rotated
// 180 degrees so crowns face the occlusal plane in both rows.
func RenderTooth(slot Slot) template.HTML {
	o := outlines[slot.Tooth.Shape]
	status := slot.Status()
	fill := unrecordedColor
	faceFill := defaultFaceFill
	if slot.Recorded() {
		fill = StatusColor(status)
		faceFill = fill
	}
	var marked map[models.Face]bool
	if slot.Latest != nil {
		marked = make(map[models.Face]bool, 5)
		for _, f := range slot.Latest.Faces() {
			marked[f] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="tooth tooth-%s" width="%d" height="%d" viewBox="0 0 %d %d" data-tooth="%d" data-status="%s" role="img" aria-label="%s">`,
		slot.Tooth.Shape, o.width, o.height+8, o.width, o.height+8, slot.Tooth.Number, status, template.HTMLEscapeString(slot.Tooth.Label()))
	fmt.Fprintf(&b, `<title>%s: %s</title>`, template.HTMLEscapeString(slot.Tooth.Label()), template.HTMLEscapeString(status.Label()))

	if slot.Tooth.Lower() {
		fmt.Fprintf(&b, `<g transform="rotate(180 %g %g)">`, float64(o.width)/2, float64(o.height)/2)
	} else {
		b.WriteString(`<g>`)
	}
	fmt.Fprintf(&b, `<path class="root" d="%s" fill="%s" opacity="0.5"/>`, o.root, rootColor)

	occ := occlusalIdle
	if marked[models.FaceOcclusal] {
		occ = faceFill
	}
	fmt.Fprintf(&b, `<path class="face-oclusal" d="%s" fill="%s" stroke="#999" stroke-width="0.5"/>`, o.occlusal, occ)

	crown := fill
	if marked[models.FaceBuccal] {
		crown = faceFill
	}
	fmt.Fprintf(&b, `<path class="crown" d="%s" fill="%s" stroke="#666" stroke-width="1.2"/>`, o.crown, crown)

	if marked[models.FaceMesial] {
		fmt.Fprintf(&b, `<path class="face-mesial" d="%s" fill="%s" opacity="0.9" stroke="#666" stroke-width="0.8"/>`, o.mesial, faceFill)
	}
	if marked[models.FaceDistal] {
		fmt.Fprintf(&b, `<path class="face-distal" d="%s" fill="%s" opacity="0.9" stroke="#666" stroke-width="0.8"/>`, o.distal, faceFill)
	}
	if marked[models.FaceLingual] {
		l := o.lingual
		fmt.Fprintf(&b, `<ellipse class="face-lingual" cx="%g" cy="%g" rx="%g" ry="%g" fill="%s" opacity="0.7" stroke="#555"/>`, l[0], l[1], l[2], l[3], faceFill)
	}
	b.WriteString(`</g>`)

	// face badges along the bottom edge, outside the rotated group
	x := float64(o.width) - 4
	faces := slot.Faces()
	for i := len(faces) - 1; i >= 0; i-- {
		f := faces[i]
		fmt.Fprintf(&b, `<circle class="badge badge-%s" cx="%g" cy="%d" r="3" fill="%s"><title>%s</title></circle>`,
			f, x, o.height+4, FaceBadgeColor(f), f.Label())
		x -= 7
	}

	if slot.Records > 1 {
		fmt.Fprintf(&b, `<g class="count"><circle cx="7" cy="7" r="7" fill="#2563EB"/><text x="7" y="10" font-size="9" text-anchor="middle" fill="#FFFFFF">%d</text></g>`, slot.Records)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
