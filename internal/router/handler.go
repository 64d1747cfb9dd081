package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/query"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.log.Error("storage health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Storage connection failed", nil))
			return
		}
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"status":   "OK",
		"products": h.catalog.Len(),
		"sessions": h.sessions.Len(),
	}))
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.catalog.Categories()))
}

// GetProducts runs a listing query. Every filter is optional; brand may repeat.
func (h *Handler) GetProducts(c *gin.Context) {
	filters, errs := parseFilters(c)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid filters", errs))
		return
	}

	results := query.Search(
		h.catalog.Products(),
		c.DefaultQuery("category", models.AllCategories),
		c.Query("q"),
		filters,
		models.ParseSortKey(c.Query("sort")),
	)

	c.Header("X-Total-Count", strconv.Itoa(len(results)))
	c.JSON(http.StatusOK, global.SuccessResponse(results))
}

func (h *Handler) GetFacets(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(query.Facets(h.catalog.Products())))
}

func (h *Handler) GetProductByID(c *gin.Context) {
	id, ok := productIDParam(c, "id")
	if !ok {
		return
	}

	product, ok := h.lookupProduct(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(query.Suggest(h.catalog.Products(), c.Query("q"), h.suggest)))
}

func parseFilters(c *gin.Context) (models.FilterCriteria, []global.ValidationError) {
	filters := models.DefaultFilters(models.DefaultFilterMaxPrice)
	var errs []global.ValidationError

	if raw := c.Query("min_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, invalidParam("min_price", "a number"))
		} else {
			filters.PriceRange.Min = v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, invalidParam("max_price", "a number"))
		} else {
			filters.PriceRange.Max = v
		}
	}
	if raw := c.Query("rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, invalidParam("rating", "a number"))
		} else {
			filters.MinRating = v
		}
	}
	if raw := c.Query("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, invalidParam("in_stock", "true or false"))
		} else {
			filters.InStockOnly = v
		}
	}
	if brands := c.QueryArray("brand"); len(brands) > 0 {
		filters.Brands = brands
	}

	if len(errs) > 0 {
		return filters, errs
	}
	return filters, filters.Validate()
}

func invalidParam(field, want string) global.ValidationError {
	return global.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be %s", field, want),
		Code:    "invalid_format",
	}
}

func productIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", []global.ValidationError{
			invalidParam(name, "an integer"),
		}))
		return 0, false
	}
	return id, true
}

func (h *Handler) lookupProduct(c *gin.Context, id int64) (models.Product, bool) {
	product, err := h.catalog.Product(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "product_id", Message: "No product exists with this id", Code: "not_found"},
			}))
			return models.Product{}, false
		}
		h.log.Error("failed to fetch product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return models.Product{}, false
	}
	return product, true
}

// bindJSON decodes the body into dst, answering 400 with per-field errors when
// it is malformed
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]global.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, global.ValidationError{
				Field:   fe.Field(),
				Message: bindingMessage(fe),
				Code:    fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Validation failed", fields))
		return false
	}

	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
	return false
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
