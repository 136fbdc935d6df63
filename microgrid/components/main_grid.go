package components

// MainGrid is the transmission connection to the wider grid: two price
// series (up-regulation for buying, down-regulation for selling) plus
// flat import/export transmission costs. Prices are stored already
// divided by 1000, matching how they are read from source.
type MainGrid struct {
	UpPrices               []float64
	DownPrices             []float64
	ImportTransmissionCost float64
	ExportTransmissionCost float64
}

// NewMainGrid divides the raw up/down price series by 1000 (the unit
// convention prices are read in at) and returns a MainGrid ready for
// use.
func NewMainGrid(rawUpPrices, rawDownPrices []float64, importTC, exportTC float64) *MainGrid {
	up := make([]float64, len(rawUpPrices))
	for i, v := range rawUpPrices {
		up[i] = v / 1000.0
	}
	down := make([]float64, len(rawDownPrices))
	for i, v := range rawDownPrices {
		down[i] = v / 1000.0
	}
	return &MainGrid{UpPrices: up, DownPrices: down, ImportTransmissionCost: importTC, ExportTransmissionCost: exportTC}
}

// UpPrice returns the buy-side price at idx.
func (g *MainGrid) UpPrice(idx int) float64 {
	return g.UpPrices[idx]
}

// DownPrice returns the sell-side price at idx.
func (g *MainGrid) DownPrice(idx int) float64 {
	return g.DownPrices[idx]
}

// BoughtCost returns the cost of importing e units of energy at idx.
func (g *MainGrid) BoughtCost(e float64, idx int) float64 {
	return e * (g.UpPrices[idx] + g.ImportTransmissionCost)
}

// SoldProfit returns the profit from exporting e units of energy at
// idx.
func (g *MainGrid) SoldProfit(e float64, idx int) float64 {
	return e * (g.DownPrices[idx] - g.ExportTransmissionCost)
}
