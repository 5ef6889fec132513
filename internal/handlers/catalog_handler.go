package handlers

import (
	"net/url"
	"strings"

	"storefront/internal/search"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// overridePrefix marks the filter-url query parameters that change the current criteria.
const overridePrefix = "set_"

// CatalogHandler serves the public storefront listing and product pages.
type CatalogHandler struct {
	search   *services.SearchService
	products *services.ProductService
	log      *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(search *services.SearchService, products *services.ProductService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{search: search, products: products, log: log}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
	router.Get("/search/filter-url", h.HandleFilterURL)
	router.Get("/categories", h.HandleCategories)
	router.Get("/tags", h.HandleTags)
	router.Get("/products/:slug", h.HandleGetProduct)
}

func queryValues(c *fiber.Ctx) (url.Values, error) {
	return url.ParseQuery(string(c.Request().URI().QueryString()))
}

// HandleSearch resolves one page of the product listing from the query string
// (q, category, tag, price, rating, sort, page, currency).
func (h *CatalogHandler) HandleSearch(c *fiber.Ctx) error {
	values, err := queryValues(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query string",
			"error":   err.Error(),
		})
	}
	criteria, page, err := search.ParseCriteria(values)
	if err != nil {
		return respondError(c, h.log, "Invalid search criteria", err)
	}

	result, err := h.search.Search(c.UserContext(), criteria, page, values.Get("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not search products", err)
	}
	return c.JSON(result)
}

// HandleFilterURL builds the canonical listing URL for the current criteria with the
// set_* parameters applied, e.g. ?category=Shoes&page=3&set_tag=featured.
func (h *CatalogHandler) HandleFilterURL(c *fiber.Ctx) error {
	values, err := queryValues(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query string",
			"error":   err.Error(),
		})
	}

	current := url.Values{}
	next := url.Values{}
	for key, v := range values {
		if strings.HasPrefix(key, overridePrefix) {
			next[strings.TrimPrefix(key, overridePrefix)] = v
			continue
		}
		current[key] = v
	}

	criteria, page, err := search.ParseCriteria(current)
	if err != nil {
		return respondError(c, h.log, "Invalid search criteria", err)
	}
	override := search.Override{
		Query:    next.Get("q"),
		Category: next.Get("category"),
		Tag:      next.Get("tag"),
		Price:    next.Get("price"),
		Rating:   next.Get("rating"),
		Sort:     next.Get("sort"),
	}
	if override.Sort != "" {
		if _, ok := search.LookupSort(override.Sort); !ok {
			return respondError(c, h.log, "Invalid search criteria", search.ErrInvalidSortKey)
		}
	}
	if p := next.Get("page"); p != "" {
		override.Page = search.ParsePage(p)
	}

	return c.JSON(fiber.Map{
		"url": search.FilterURL(criteria, page, override),
	})
}

// HandleCategories lists the categories of published products.
func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.search.Categories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleTags lists the tags of published products.
func (h *CatalogHandler) HandleTags(c *fiber.Ctx) error {
	tags, err := h.search.Tags(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve tags", err)
	}
	return c.JSON(tags)
}

// HandleGetProduct returns a published product by slug.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.products.GetProductBySlug(c.UserContext(), c.Params("slug"), c.Query("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve product", err)
	}
	return c.JSON(product)
}
