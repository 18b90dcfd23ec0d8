package adminapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

type productPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	PriceCOP int64  `json:"priceCOP" validate:"gte=0"`
}

// registerProductRoutes registers the product catalogue endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts, requireSession)
	webserver.ApiGET("/products/:id", getProduct, requireSession)
	webserver.ApiPOST("/products", createProduct, requireSession)
	webserver.ApiPOST("/products/seed", seedProducts, requireSession)
	webserver.ApiPUT("/products/:id", updateProduct, requireSession)
	webserver.ApiDELETE("/products/:id", deleteProduct, requireSession)
}

var productSorters = map[string]func(a, b domain.Product) bool{
	"name": func(a, b domain.Product) bool {
		return a.NormalizedName() < b.NormalizedName()
	},
	"price": func(a, b domain.Product) bool {
		return a.PriceCOP < b.PriceCOP
	},
	"created_at": func(a, b domain.Product) bool {
		return a.CreatedAt < b.CreatedAt
	},
	"updated_at": func(a, b domain.Product) bool {
		return a.UpdatedAt < b.UpdatedAt
	},
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// Filters: q (substring) or name (exact, case-insensitive)
	q := domain.NormalizeName(c.QueryParam("q"))
	nameFilter := domain.NormalizeName(c.QueryParam("name"))
	activeOnly := c.QueryParam("active") == "true"

	less, found := productSorters[strings.TrimSpace(c.QueryParam("sort"))]
	if !found {
		less = productSorters["name"]
	}
	desc := strings.EqualFold(strings.TrimSpace(c.QueryParam("order")), "DESC")

	rows := make([]domain.Product, 0)
	for _, p := range currentSession(c).Model().ProductsByName() {
		if q != "" && !strings.Contains(p.NormalizedName(), q) {
			continue
		}
		if nameFilter != "" && p.NormalizedName() != nameFilter {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		rows = append(rows, p)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})

	total := len(rows)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return paged(c, rows[start:end], int64(total), page, pageSize)
}

func getProduct(c echo.Context) error {
	p, found := currentSession(c).Model().Product(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func bindProduct(c echo.Context) (ledger.ProductInput, error) {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return ledger.ProductInput{}, err
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if err := c.Validate(&payload); err != nil {
		return ledger.ProductInput{}, err
	}
	return ledger.ProductInput{Name: payload.Name, PriceCOP: payload.PriceCOP}, nil
}

func createProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Name is required and price must be >= 0", err.Error())
	}
	p, err := currentSession(c).Gateway().SubmitProduct(c.Request().Context(), in)
	if err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "product_create", p.Name+" "+ledger.FormatCOP(p.PriceCOP))
	return c.JSON(http.StatusCreated, Response{Data: p})
}

func updateProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "Name is required and price must be >= 0", err.Error())
	}
	p, err := currentSession(c).Gateway().UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "product_update", p.Name+" "+ledger.FormatCOP(p.PriceCOP))
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := currentSession(c).Gateway().DeleteProduct(c.Request().Context(), id); err != nil {
		return ledgerFail(c, err)
	}
	logOperation(c, "product_delete", id)
	return ok(c, map[string]interface{}{"id": id})
}

func seedProducts(c echo.Context) error {
	n, err := currentSession(c).Gateway().SeedProducts(c.Request().Context())
	if err != nil {
		return ledgerFail(c, err)
	}
	if n > 0 {
		logOperation(c, "product_seed", cast.ToString(n)+" default products")
	}
	return ok(c, map[string]interface{}{"seeded": n})
}
