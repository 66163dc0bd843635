package consolidate

const (
	// highlightColor flags cells whose value disagrees with the template.
	highlightColor = "FAA0A0"

	// summaryFillColor backs generated column summaries.
	summaryFillColor = "BFFFFF"
)

// supplierPalette is cycled to assign each supplier a stable fill color
// within a sheet. Muted tones, picked to stay distinguishable for
// color-blind readers.
var supplierPalette = []string{
	"E4DFEC",
	"D4D5F8",
	"DFD2FA",
	"D9E5F3",
	"E0E0EC",
	"E7DAF2",
	"E3E9E9",
	"CC79A7",
	"009E73",
	"0072B2",
}

type colorCycle struct {
	next int
}

func (c *colorCycle) Next() string {
	color := supplierPalette[c.next%len(supplierPalette)]
	c.next++
	return color
}
