package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

// ResetConfirmation must be sent verbatim to reset the ledger.
const ResetConfirmation = "RESET"

type salePayload struct {
	ProductID    string      `json:"productId" validate:"required"`
	UnitPriceCOP *int64      `json:"unitPriceCOP"`
	Quantity     int64       `json:"quantity"`
	TotalCOP     int64       `json:"totalCOP"`
	At           interface{} `json:"at"`
}

type stayPayload struct {
	GuestName string      `json:"guestName"`
	Rooms     int64       `json:"rooms"`
	CheckIn   interface{} `json:"checkIn"`
	CheckOut  interface{} `json:"checkOut"`
	PriceCOP  int64       `json:"priceCOP"`
	At        interface{} `json:"at"`
}

type expensePayload struct {
	Concept   string      `json:"concept"`
	AmountCOP int64       `json:"amountCOP"`
	Notes     string      `json:"notes"`
	At        interface{} `json:"at"`
}

type detailVisibility struct {
	Visible bool `json:"visible"`
}

type resetPayload struct {
	Confirm string `json:"confirm"`
}

func registerLedgerRoutes() {
	webserver.ApiGET("/ledger/balance", getBalance, requireSession)
	webserver.ApiGET("/ledger/detail", getDetail, requireSession)
	webserver.ApiPUT("/ledger/detail", setDetailVisible, requireSession)
	webserver.ApiGET("/ledger/daily", getDaily, requireSession)

	webserver.ApiGET("/ledger/sales", listSales, requireSession)
	webserver.ApiPOST("/ledger/sales", createSale, requireSession)
	webserver.ApiGET("/ledger/stays", listStays, requireSession)
	webserver.ApiPOST("/ledger/stays", createStay, requireSession)
	webserver.ApiGET("/ledger/expenses", listExpenses, requireSession)
	webserver.ApiPOST("/ledger/expenses", createExpense, requireSession)

	webserver.ApiPOST("/ledger/reset", resetLedger, requireSession)
}

func getBalance(c echo.Context) error {
	s := currentSession(c)
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, ledger.RenderBalanceText(s.Balance()))
	}
	return ok(c, s.Balance())
}

func getDetail(c echo.Context) error {
	s := currentSession(c)
	detail, visible := s.Detail()
	if !visible {
		return ok(c, map[string]interface{}{"visible": false})
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, ledger.RenderDetailText(detail, time.Local))
	}
	return ok(c, map[string]interface{}{"visible": true, "detail": detail})
}

// getDaily returns the per day totals of the last n active days (default
// 30) and the statistics of their nets.
func getDaily(c echo.Context) error {
	n := cast.ToInt(c.QueryParam("days"))
	if n <= 0 || n > 366 {
		n = 30
	}
	m := currentSession(c).Model()
	days := ledger.DailyTotals(m.Sales(), m.Stays(), m.Expenses(), time.Local)
	if len(days) > n {
		days = days[len(days)-n:]
	}
	summary, err := ledger.SummariseDays(days)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STATS_ERROR", "Failed to summarise days", err.Error())
	}
	return ok(c, map[string]interface{}{"days": days, "stats": summary})
}

func setDetailVisible(c echo.Context) error {
	var req detailVisibility
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	s := currentSession(c)
	s.SetDetailVisible(req.Visible)
	return getDetail(c)
}

// pageOf returns one page of items in reverse arrival order.
func pageOf[T any](items []T, page, pageSize int) []T {
	n := len(items)
	start := (page - 1) * pageSize
	if start >= n {
		return []T{}
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	out := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, items[n-1-i])
	}
	return out
}

func listSales(c echo.Context) error {
	page, pageSize := parsePagination(c)
	items := currentSession(c).Model().Sales()
	return paged(c, pageOf(items, page, pageSize), int64(len(items)), page, pageSize)
}

func listStays(c echo.Context) error {
	page, pageSize := parsePagination(c)
	items := currentSession(c).Model().Stays()
	return paged(c, pageOf(items, page, pageSize), int64(len(items)), page, pageSize)
}

func listExpenses(c echo.Context) error {
	page, pageSize := parsePagination(c)
	items := currentSession(c).Model().Expenses()
	return paged(c, pageOf(items, page, pageSize), int64(len(items)), page, pageSize)
}

func createSale(c echo.Context) error {
	var req salePayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Product is required", err.Error())
	}
	at, err := parseTime(req.At)
	if err != nil {
		return ledgerFail(c, err)
	}
	s := currentSession(c)
	sale, err := s.Gateway().SubmitSale(c.Request().Context(), ledger.SaleInput{
		ProductID:    strings.TrimSpace(req.ProductID),
		UnitPriceCOP: req.UnitPriceCOP,
		Quantity:     req.Quantity,
		TotalCOP:     req.TotalCOP,
		At:           at,
	})
	if err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "sale", sale.ProductName+" x"+cast.ToString(sale.Quantity)+" "+ledger.FormatCOP(sale.TotalCOP))
	return c.JSON(http.StatusCreated, Response{Data: sale})
}

func createStay(c echo.Context) error {
	var req stayPayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	in := ledger.StayInput{
		GuestName: req.GuestName,
		Rooms:     req.Rooms,
		PriceCOP:  req.PriceCOP,
	}
	var err error
	if in.CheckIn, err = parseTime(req.CheckIn); err != nil {
		return ledgerFail(c, err)
	}
	if in.CheckOut, err = parseTime(req.CheckOut); err != nil {
		return ledgerFail(c, err)
	}
	if in.At, err = parseTime(req.At); err != nil {
		return ledgerFail(c, err)
	}
	stay, err := currentSession(c).Gateway().SubmitStay(c.Request().Context(), in)
	if err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "stay", stay.GuestName+" "+cast.ToString(stay.Nights)+" nights "+ledger.FormatCOP(stay.PriceCOP))
	return c.JSON(http.StatusCreated, Response{Data: stay})
}

func createExpense(c echo.Context) error {
	var req expensePayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	at, err := parseTime(req.At)
	if err != nil {
		return ledgerFail(c, err)
	}
	expense, err := currentSession(c).Gateway().SubmitExpense(c.Request().Context(), ledger.ExpenseInput{
		Concept:   req.Concept,
		AmountCOP: req.AmountCOP,
		Notes:     req.Notes,
		At:        at,
	})
	if err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "expense", expense.Concept+" "+ledger.FormatCOP(expense.AmountCOP))
	return c.JSON(http.StatusCreated, Response{Data: expense})
}

func resetLedger(c echo.Context) error {
	var req resetPayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	confirmed := strings.TrimSpace(req.Confirm) == ResetConfirmation
	if err := currentSession(c).Gateway().ResetLedger(c.Request().Context(), confirmed); err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "reset", "sales, stays and expenses removed")
	return ok(c, map[string]interface{}{"reset": true})
}
