package httpserver

import (
	"net/http"
	"strconv"

	catalogsvc "storefront/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

func (h *handlers) featured(c *gin.Context) {
	f, err := h.Catalog.Featured(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, featuredView{
		Courses:  mapSlice(f.Courses, toCourseView),
		Products: mapSlice(f.Products, toProductView),
	})
}

func (h *handlers) listCourses(c *gin.Context) {
	page, ok := pageParam(c, "/courses")
	if !ok {
		return
	}
	res, err := h.Catalog.ListCourses(c.Request.Context(), catalogsvc.CourseQuery{
		Query:      c.Query("q"),
		Difficulty: c.Query("difficulty"),
		Page:       page,
	})
	if err != nil {
		h.writeError(c, err, "/courses")
		return
	}
	c.JSON(http.StatusOK, mapPage(res, toCourseView))
}

func (h *handlers) getCourse(c *gin.Context) {
	course, err := h.Catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "/courses")
		return
	}
	c.JSON(http.StatusOK, toCourseView(*course))
}

func (h *handlers) listProducts(c *gin.Context) {
	page, ok := pageParam(c, "/products")
	if !ok {
		return
	}
	res, err := h.Catalog.ListProducts(c.Request.Context(), catalogsvc.ProductQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     page,
	})
	if err != nil {
		h.writeError(c, err, "/products")
		return
	}
	c.JSON(http.StatusOK, mapPage(res, toProductView))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "/products")
		return
	}
	c.JSON(http.StatusOK, toProductView(*p))
}

// pageParam reads ?page=N. A missing value means the first page.
func pageParam(c *gin.Context, redirect string) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "page must be a number", redirect)
		return 0, false
	}
	return page, true
}
