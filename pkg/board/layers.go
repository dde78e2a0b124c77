package board

// Names of the structural layers every board canvas carries. Board Content
// and Board Elements sit at the top level above Background; the others live
// inside Board Elements, listed here bottom to top.
const (
	LayerBackground = "Background"
	GroupContent    = "Board Content"
	GroupElements   = "Board Elements"

	GroupSimplePage = "Simple page Mask"
	LayerGutters    = "Gutters"
	LayerBorders    = "Borders"
	LayerMask       = "Mask"
	GroupOverlay    = "Overlay"
	LayerLegend     = "Legend"
	LayerLogo       = "Logo"
	GroupImageNames = "Image Names"
)

// Color metadata keys. Values are #rrggbb strings.
const (
	KeyBackgroundColor = "backgroundColor"
	KeyBorderColor     = "borderColor"
	KeyMaskColor       = "maskColor"
)
