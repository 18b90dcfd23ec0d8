package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const exportTimeLayout = "2006-01-02 15:04"

// exportRow is one ledger record flattened for spreadsheets. Amount is
// signed like the detail view.
type exportRow struct {
	Collection string `csv:"collection"`
	ID         string `csv:"id"`
	At         string `csv:"at"`
	Title      string `csv:"title"`
	Quantity   int64  `csv:"quantity"`
	UnitCOP    int64  `csv:"unit_cop"`
	AmountCOP  int64  `csv:"amount_cop"`
	CreatedBy  string `csv:"created_by"`
	Notes      string `csv:"notes"`
}

var exportHeaders = []string{"collection", "id", "at", "title", "quantity", "unit_cop", "amount_cop", "created_by", "notes"}

func (r exportRow) values() []interface{} {
	return []interface{}{r.Collection, r.ID, r.At, r.Title, r.Quantity, r.UnitCOP, r.AmountCOP, r.CreatedBy, r.Notes}
}

func registerExportRoutes() {
	webserver.ApiGET("/export/ledger", exportLedger, requireSession)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return domain.FromMillis(ms).In(time.Local).Format(exportTimeLayout)
}

func exportRows(m *ledger.ReadModel, collection string) []*exportRow {
	rows := make([]*exportRow, 0)
	if collection == "" || collection == domain.CollectionSales {
		for _, s := range m.Sales() {
			rows = append(rows, &exportRow{
				Collection: domain.CollectionSales,
				ID:         s.ID,
				At:         formatMillis(s.At),
				Title:      s.ProductName,
				Quantity:   s.Quantity,
				UnitCOP:    s.UnitPriceCOP,
				AmountCOP:  s.TotalCOP,
				CreatedBy:  s.CreatedBy,
			})
		}
	}
	if collection == "" || collection == domain.CollectionStays {
		for _, s := range m.Stays() {
			rows = append(rows, &exportRow{
				Collection: domain.CollectionStays,
				ID:         s.ID,
				At:         formatMillis(s.At),
				Title:      s.GuestName,
				Quantity:   s.Nights,
				UnitCOP:    s.PriceCOP,
				AmountCOP:  s.PriceCOP,
				CreatedBy:  s.CreatedBy,
				Notes:      fmt.Sprintf("%d room(s) %s - %s", s.Rooms, formatMillis(s.CheckIn), formatMillis(s.CheckOut)),
			})
		}
	}
	if collection == "" || collection == domain.CollectionExpenses {
		for _, e := range m.Expenses() {
			rows = append(rows, &exportRow{
				Collection: domain.CollectionExpenses,
				ID:         e.ID,
				At:         formatMillis(e.At),
				Title:      e.Concept,
				Quantity:   1,
				UnitCOP:    e.AmountCOP,
				AmountCOP:  -e.AmountCOP,
				CreatedBy:  e.CreatedBy,
				Notes:      e.Notes,
			})
		}
	}
	return rows
}

// exportLedger downloads the ledger as CSV (default) or XLSX.
// Query: collection=sales|stays|expenses, format=csv|xlsx.
func exportLedger(c echo.Context) error {
	collection := c.QueryParam("collection")
	switch collection {
	case "", domain.CollectionSales, domain.CollectionStays, domain.CollectionExpenses:
	default:
		return fail(c, http.StatusBadRequest, "INVALID_COLLECTION", "Unknown collection", collection)
	}
	m := currentSession(c).Model()
	rows := exportRows(m, collection)
	name := "ledger"
	if collection != "" {
		name = collection
	}
	name += "-" + time.Now().Format("20060102-1504")

	switch c.QueryParam("format") {
	case "", "csv":
		var buf bytes.Buffer
		if err := gocsv.Marshal(rows, &buf); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build CSV", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", name))
		return c.Blob(http.StatusOK, mimeCSV, buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := writeXLSX(&buf, rows, ledger.ReduceBalance(m.Sales(), m.Stays(), m.Expenses())); err != nil {
			return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build spreadsheet", err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.xlsx", name))
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}
	return fail(c, http.StatusBadRequest, "INVALID_FORMAT", "Format must be csv or xlsx", nil)
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col), row)
}

// writeXLSX writes a Ledger sheet with one row per record and a Balance
// sheet with the totals.
func writeXLSX(w io.Writer, rows []*exportRow, b ledger.Balance) error {
	const ledgerSheet, balanceSheet = "Ledger", "Balance"
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ledgerSheet)
	for i, h := range exportHeaders {
		f.SetCellValue(ledgerSheet, cellName(i, 1), h)
	}
	for r, row := range rows {
		for i, v := range row.values() {
			f.SetCellValue(ledgerSheet, cellName(i, r+2), v)
		}
	}

	f.NewSheet(balanceSheet)
	totals := [][2]interface{}{
		{"total_sales", b.TotalSales},
		{"total_stays", b.TotalStays},
		{"total_income", b.TotalIncome},
		{"total_expenses", b.TotalExpenses},
		{"net_balance", b.NetBalance},
	}
	for i, t := range totals {
		f.SetCellValue(balanceSheet, cellName(0, i+1), t[0])
		f.SetCellValue(balanceSheet, cellName(1, i+1), t[1])
	}
	return f.Write(w)
}
