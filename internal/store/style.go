package store

import "github.com/xuri/excelize/v2"

// Colors and number formats shared by the registry and report sheets.
const (
	headerFillColor = "E0E0E0"
	gainFontColor   = "008800"
	lossFontColor   = "CC0000"

	fmtDayMonth = "DD-MMM"
	fmtPercent  = "0.00%"
	fmtPrice    = "0.00"
)

// style returns a cached style ID, creating it on first use. Style IDs are
// scoped to the underlying file, so the cache lives on the Workbook.
func (w *Workbook) style(key string, s *excelize.Style) (int, error) {
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(s)
	if err != nil {
		return 0, err
	}
	w.styles[key] = id
	return id, nil
}

func (w *Workbook) titleStyle() (int, error) {
	return w.style("title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
}

func (w *Workbook) boldStyle() (int, error) {
	return w.style("bold", &excelize.Style{Font: &excelize.Font{Bold: true}})
}

func (w *Workbook) headerStyle() (int, error) {
	return w.style("header", &excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
	})
}

func (w *Workbook) dayMonthStyle() (int, error) {
	nf := fmtDayMonth
	return w.style("daymonth", &excelize.Style{CustomNumFmt: &nf})
}

func (w *Workbook) priceStyle() (int, error) {
	nf := fmtPrice
	return w.style("price", &excelize.Style{CustomNumFmt: &nf})
}

// percentStyle formats a fraction as a two-decimal percentage, colored green
// for gains and red for losses.
func (w *Workbook) percentStyle(v float64) (int, error) {
	nf := fmtPercent
	switch {
	case v > 0:
		return w.style("pct-gain", &excelize.Style{
			CustomNumFmt: &nf,
			Font:         &excelize.Font{Color: gainFontColor},
		})
	case v < 0:
		return w.style("pct-loss", &excelize.Style{
			CustomNumFmt: &nf,
			Font:         &excelize.Font{Color: lossFontColor},
		})
	default:
		return w.style("pct", &excelize.Style{CustomNumFmt: &nf})
	}
}
