package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/metrics"
	"github.com/labstack/echo/v4"
)

func registerSystemRoutes() {
	webserver.ApiGET("/system/oplogs", listOprLogs, requireSession)
	webserver.ApiGET("/system/metrics/:name", queryMetric, requireSession)
}

// listOprLogs pages through the operator log, newest first.
// Filters: action (exact), q (operator or description substring).
func listOprLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	action := strings.TrimSpace(c.QueryParam("action"))
	q := strings.TrimSpace(c.QueryParam("q"))

	db := GetDB(c).Model(&domain.SysOprLog{})
	if action != "" {
		db = db.Where("opt_action = ?", action)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(opr_name) LIKE ? OR LOWER(opt_desc) LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operation logs", err.Error())
	}
	var rows []domain.SysOprLog
	if err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operation logs", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// queryMetric returns the samples of one gauge. start and end accept the
// same formats as ledger timestamps; the default window is the last day.
func queryMetric(c echo.Context) error {
	end, err := parseTime(c.QueryParam("end"))
	if err != nil {
		return ledgerFail(c, err)
	}
	if end.IsZero() {
		end = time.Now()
	}
	start, err := parseTime(c.QueryParam("start"))
	if err != nil {
		return ledgerFail(c, err)
	}
	if start.IsZero() {
		start = end.Add(-24 * time.Hour)
	}
	points, err := metrics.Query(c.Param("name"), start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, points)
}
