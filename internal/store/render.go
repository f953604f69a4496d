package store

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"MarketLedger/internal/model"
	"MarketLedger/internal/report"
)

// RenderReport rebuilds the Overview and Summary sheets from a derived
// report. Any prior content of either sheet is discarded first.
func (w *Workbook) RenderReport(r *report.Report) error {
	if err := w.renderOverview(r); err != nil {
		return fmt.Errorf("render overview: %w", err)
	}
	if err := w.renderSummary(r); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

func (w *Workbook) renderOverview(r *report.Report) error {
	if err := w.Recreate(OverviewSheet); err != nil {
		return err
	}

	title, err := w.titleStyle()
	if err != nil {
		return err
	}
	if err := w.setCell(OverviewSheet, 1, 1, fmt.Sprintf("Market Data Overview (Last %d Days)", r.Days)); err != nil {
		return err
	}
	if err := w.setStyle(OverviewSheet, 1, 1, title); err != nil {
		return err
	}
	if err := w.setCell(OverviewSheet, 2, 1, "Generated: "+r.GeneratedAt.Format(model.TimestampLayout)); err != nil {
		return err
	}

	row := 4
	for _, sec := range r.Sections {
		next, err := w.renderSection(row, &sec)
		if err != nil {
			return fmt.Errorf("section %s: %w", sec.Ticker, err)
		}
		row = next + 2 // blank-row separation between tickers
	}
	return nil
}

// renderSection writes one ticker block starting at startRow and returns the
// row after its last data row.
func (w *Workbook) renderSection(startRow int, sec *report.Section) (int, error) {
	bold, err := w.boldStyle()
	if err != nil {
		return 0, err
	}
	header, err := w.headerStyle()
	if err != nil {
		return 0, err
	}
	dayMonth, err := w.dayMonthStyle()
	if err != nil {
		return 0, err
	}

	row := startRow
	if err := w.setCell(OverviewSheet, row, 1, "Ticker: "+sec.Ticker); err != nil {
		return 0, err
	}
	if err := w.setStyle(OverviewSheet, row, 1, bold); err != nil {
		return 0, err
	}
	row++

	columns := []string{"time", "open", "high", "low", "close"}
	if sec.HasChangePct {
		columns = append(columns, "daily_change_pct")
	}
	headerRow := row
	for col, name := range columns {
		if err := w.setCell(OverviewSheet, row, col+1, name); err != nil {
			return 0, err
		}
		if err := w.setStyle(OverviewSheet, row, col+1, header); err != nil {
			return 0, err
		}
	}
	row++

	dataStart := row
	for _, c := range sec.Window {
		if err := w.setCell(OverviewSheet, row, 1, c.Time); err != nil {
			return 0, err
		}
		if err := w.setStyle(OverviewSheet, row, 1, dayMonth); err != nil {
			return 0, err
		}
		for col, v := range []float64{c.Open, c.High, c.Low, c.Close} {
			if err := w.setCell(OverviewSheet, row, col+2, v); err != nil {
				return 0, err
			}
		}
		if sec.HasChangePct {
			// Stored as a fraction so the percent format displays the
			// true value.
			if err := w.setCell(OverviewSheet, row, 6, c.DailyChangePct/100); err != nil {
				return 0, err
			}
			pct, err := w.percentStyle(c.DailyChangePct)
			if err != nil {
				return 0, err
			}
			if err := w.setStyle(OverviewSheet, row, 6, pct); err != nil {
				return 0, err
			}
		}
		row++
	}
	dataEnd := row - 1

	if err := w.addSectionChart(&sec.Chart, headerRow, dataStart, dataEnd); err != nil {
		return 0, err
	}
	return row, nil
}

func (w *Workbook) addSectionChart(c *report.Chart, headerRow, dataStart, dataEnd int) error {
	anchor, err := excelize.CoordinatesToCellName(7, dataStart)
	if err != nil {
		return err
	}
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$E$%d", OverviewSheet, headerRow),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", OverviewSheet, dataStart, dataEnd),
			Values:     fmt.Sprintf("%s!$E$%d:$E$%d", OverviewSheet, dataStart, dataEnd),
		}},
		Title:     []excelize.RichTextRun{{Text: c.Title}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: c.WidthPx, Height: c.HeightPx},
		XAxis: excelize.ChartAxis{
			Title:          []excelize.RichTextRun{{Text: c.XTitle}},
			MajorGridLines: false,
			NumFmt:         excelize.ChartNumFmt{CustomNumFmt: c.DateFmt},
		},
		YAxis: excelize.ChartAxis{
			Title:          []excelize.RichTextRun{{Text: c.YTitle}},
			MajorGridLines: false,
		},
	}
	return w.f.AddChart(OverviewSheet, anchor, chart)
}

func (w *Workbook) renderSummary(r *report.Report) error {
	if err := w.Recreate(SummarySheet); err != nil {
		return err
	}

	title, err := w.titleStyle()
	if err != nil {
		return err
	}
	bold, err := w.boldStyle()
	if err != nil {
		return err
	}
	header, err := w.headerStyle()
	if err != nil {
		return err
	}
	price, err := w.priceStyle()
	if err != nil {
		return err
	}

	if err := w.setCell(SummarySheet, 1, 1, "Market Data Summary"); err != nil {
		return err
	}
	if err := w.setStyle(SummarySheet, 1, 1, title); err != nil {
		return err
	}
	if err := w.setCell(SummarySheet, 2, 1, "Last Updated: "+r.GeneratedAt.Format(model.TimestampLayout)); err != nil {
		return err
	}
	if len(r.Summary) == 0 {
		return nil
	}

	if err := w.setCell(SummarySheet, 4, 1, fmt.Sprintf("%d-Day Price Changes", r.Days)); err != nil {
		return err
	}
	if err := w.setStyle(SummarySheet, 4, 1, bold); err != nil {
		return err
	}

	headers := []string{"Ticker", "Start Price", "Current Price", "Change", "Change %"}
	for col, name := range headers {
		if err := w.setCell(SummarySheet, 5, col+1, name); err != nil {
			return err
		}
		if err := w.setStyle(SummarySheet, 5, col+1, header); err != nil {
			return err
		}
	}

	for i, pc := range r.Summary {
		row := 6 + i
		if err := w.setCell(SummarySheet, row, 1, pc.Ticker); err != nil {
			return err
		}
		for col, v := range []float64{pc.FirstClose, pc.LastClose, pc.Change} {
			if err := w.setCell(SummarySheet, row, col+2, v); err != nil {
				return err
			}
			if err := w.setStyle(SummarySheet, row, col+2, price); err != nil {
				return err
			}
		}
		if err := w.setCell(SummarySheet, row, 5, pc.ChangePct/100); err != nil {
			return err
		}
		pct, err := w.percentStyle(pc.ChangePct)
		if err != nil {
			return err
		}
		if err := w.setStyle(SummarySheet, row, 5, pct); err != nil {
			return err
		}
	}
	return nil
}
