package ui

import (
	"fmt"
	"net/http"

	"leadboard/app"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleDashboard serves metrics, charts and the first table page for the query filters
func (s *Server) handleDashboard(c *gin.Context) {
	q := c.Request.URL.Query()
	spec, err := parseFilterSpec(q)
	if err != nil {
		respondError(c, err)
		return
	}
	top, err := intParam(q, "top")
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.dashboard.Dashboard(c.Request.Context(), app.DashboardQuery{Spec: spec, Top: top, Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleOptions(c *gin.Context) {
	opts, err := s.dashboard.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// handleExport downloads the filtered leads as a two-sheet workbook
func (s *Server) handleExport(c *gin.Context) {
	spec, err := parseFilterSpec(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	name, raw, err := s.dashboard.Export(c.Request.Context(), spec, s.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, raw)
}
