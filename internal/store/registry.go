package store

import (
	"fmt"
	"log"
	"time"

	"MarketLedger/internal/model"
)

// registryHeader is the Tickers sheet header row. A fourth Status column is
// optional and user-managed; when present it gates which tickers get
// captured.
var registryHeader = []string{"Ticker", "Description", "Last Updated"}

// EnsureRegistry makes sure the Tickers sheet exists, creating the workbook
// scaffolding (registry header, default ticker, empty Summary sheet) when it
// does not. Returns true when anything was created.
func (w *Workbook) EnsureRegistry(defaultTicker, description string, now time.Time) (bool, error) {
	if w.HasSheet(TickersSheet) {
		return false, nil
	}

	if w.created {
		// Fresh file: take over the default sheet.
		if err := w.f.SetSheetName("Sheet1", TickersSheet); err != nil {
			return false, fmt.Errorf("rename default sheet: %w", err)
		}
	} else if _, err := w.f.NewSheet(TickersSheet); err != nil {
		return false, fmt.Errorf("create %s sheet: %w", TickersSheet, err)
	}

	header, err := w.headerStyle()
	if err != nil {
		return false, err
	}
	for col, name := range registryHeader {
		if err := w.setCell(TickersSheet, 1, col+1, name); err != nil {
			return false, err
		}
		if err := w.setStyle(TickersSheet, 1, col+1, header); err != nil {
			return false, err
		}
	}

	stamp := now.Format(model.TimestampLayout)
	for col, v := range []string{defaultTicker, description, stamp} {
		if err := w.setCell(TickersSheet, 2, col+1, v); err != nil {
			return false, err
		}
	}

	if err := w.writeSummaryScaffold(now); err != nil {
		return false, err
	}

	log.Printf("[INFO] created new workbook with default ticker: %s", defaultTicker)
	return true, nil
}

func (w *Workbook) writeSummaryScaffold(now time.Time) error {
	if !w.HasSheet(SummarySheet) {
		if _, err := w.f.NewSheet(SummarySheet); err != nil {
			return fmt.Errorf("create %s sheet: %w", SummarySheet, err)
		}
	}
	title, err := w.titleStyle()
	if err != nil {
		return err
	}
	if err := w.setCell(SummarySheet, 1, 1, "Market Data Summary"); err != nil {
		return err
	}
	if err := w.setStyle(SummarySheet, 1, 1, title); err != nil {
		return err
	}
	return w.setCell(SummarySheet, 2, 1, "Last update: "+now.Format(model.TimestampLayout))
}

// Tickers reads the registry entries eligible for capture. When a Status
// column is present, only rows whose status is exactly "Active" qualify;
// otherwise every row with a non-empty ticker does.
func (w *Workbook) Tickers() ([]string, error) {
	if !w.HasSheet(TickersSheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, TickersSheet)
	}
	rows, err := w.f.GetRows(TickersSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", TickersSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tickerCol, statusCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "Ticker":
			tickerCol = i
		case "Status":
			statusCol = i
		}
	}
	if tickerCol == -1 {
		return nil, fmt.Errorf("%s sheet has no Ticker column", TickersSheet)
	}

	var tickers []string
	for _, row := range rows[1:] {
		if tickerCol >= len(row) || row[tickerCol] == "" {
			continue
		}
		if statusCol != -1 {
			status := ""
			if statusCol < len(row) {
				status = row[statusCol]
			}
			if status != model.StatusActive {
				continue
			}
		}
		tickers = append(tickers, row[tickerCol])
	}
	if statusCol != -1 {
		log.Printf("[INFO] found %d active tickers", len(tickers))
	} else {
		log.Printf("[INFO] found %d tickers", len(tickers))
	}
	return tickers, nil
}

// Entries reads every registry row, including ones an active-status filter
// would drop.
func (w *Workbook) Entries() ([]model.TickerEntry, error) {
	if !w.HasSheet(TickersSheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, TickersSheet)
	}
	rows, err := w.f.GetRows(TickersSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", TickersSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
	statusCol := -1
	for i, name := range rows[0] {
		if name == "Status" {
			statusCol = i
		}
	}

	var entries []model.TickerEntry
	for _, row := range rows[1:] {
		if col(row, 0) == "" {
			continue
		}
		entries = append(entries, model.TickerEntry{
			Ticker:      col(row, 0),
			Description: col(row, 1),
			LastUpdated: col(row, 2),
			Status:      col(row, statusCol),
		})
	}
	return entries, nil
}

// UpsertTickerStatus stamps the registry entry for ticker with the given
// time. The first row whose ticker matches exactly is updated; its
// description is filled only when currently empty. An unknown ticker is
// appended as a new entry.
func (w *Workbook) UpsertTickerStatus(ticker, description string, now time.Time) error {
	if !w.HasSheet(TickersSheet) {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, TickersSheet)
	}
	rows, err := w.f.GetRows(TickersSheet)
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", TickersSheet, err)
	}

	stamp := now.Format(model.TimestampLayout)
	for i, row := range rows {
		if i == 0 || len(row) == 0 || row[0] != ticker {
			continue
		}
		rowNum := i + 1
		if err := w.setCell(TickersSheet, rowNum, 3, stamp); err != nil {
			return err
		}
		if description != "" && (len(row) < 2 || row[1] == "") {
			if err := w.setCell(TickersSheet, rowNum, 2, description); err != nil {
				return err
			}
		}
		return nil
	}

	rowNum := len(rows) + 1
	for col, v := range []string{ticker, description, stamp} {
		if err := w.setCell(TickersSheet, rowNum, col+1, v); err != nil {
			return err
		}
	}
	return nil
}
