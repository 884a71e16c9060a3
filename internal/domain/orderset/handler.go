package orderset

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/diverse/diverse/internal/platform/auth"
	"github.com/diverse/diverse/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints - any clinical role
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/sections/display/:accountId/:specId", h.GetSectionOrderset)
	readGroup.GET("/panels/display/:accountId/:specId/:secId", h.GetPanelOrderset)
	readGroup.GET("/tests/order/:accountId/:specId/:panelId", h.GetTestOrderset)

	// Write endpoints - admin and physician
	writeGroup := api.Group("", auth.RequireRole("admin", "physician"))
	writeGroup.POST("/sections/display", h.ReplaceSectionOrderset)
	writeGroup.DELETE("/sections/display", h.DeleteSectionOrderset)
	writeGroup.POST("/panels/display", h.ReplacePanelOrderset)
	writeGroup.DELETE("/panels/display", h.DeletePanelOrderset)
	writeGroup.POST("/tests/order", h.ReplaceTestOrderset)
	writeGroup.DELETE("/tests/order", h.DeleteTestOrderset)

	// Inspection endpoints - admin only
	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.GET("/sections/display", h.ListSectionOrdersets)
	adminGroup.GET("/sections/display/user/:accountId", h.ListSectionOrdersetsByAccount)
}

func writeError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidEntityType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

// deleteTarget identifies the scope a delete applies to, from query params.
func deleteTarget(c echo.Context) (entityType, entityID string, specialtyID int, err error) {
	entityType = c.QueryParam("entityType")
	entityID = c.QueryParam("entityId")
	if spec := c.QueryParam("specId"); spec != "" {
		specialtyID, err = strconv.Atoi(spec)
		if err != nil {
			return "", "", 0, echo.NewHTTPError(http.StatusBadRequest, "invalid specId")
		}
	}
	return entityType, entityID, specialtyID, nil
}

// -- Section Handlers --

func (h *Handler) GetSectionOrderset(c echo.Context) error {
	specID, err := intParam(c, "specId")
	if err != nil {
		return err
	}
	sections, err := h.svc.SectionOrderset(c.Request().Context(), c.Param("accountId"), specID)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, sections)
}

type replaceSectionsRequest struct {
	EntityType string             `json:"entityType"`
	EntityID   string             `json:"entityId"`
	SpecID     int                `json:"specId"`
	NumCols    int                `json:"numCols"`
	Sections   []SectionPlacement `json:"sections"`
}

func (h *Handler) ReplaceSectionOrderset(c echo.Context) error {
	var req replaceSectionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.ReplaceSectionOrderset(c.Request().Context(), req.EntityType, req.EntityID, req.SpecID, req.NumCols, req.Sections)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) DeleteSectionOrderset(c echo.Context) error {
	entityType, entityID, specID, err := deleteTarget(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSectionOrderset(c.Request().Context(), entityType, entityID, specID); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListSectionOrdersets(c echo.Context) error {
	p := pagination.FromContext(c)
	sections, err := h.svc.SectionOrdersets(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *Handler) ListSectionOrdersetsByAccount(c echo.Context) error {
	grouped, err := h.svc.SectionOrdersetsByAccount(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, grouped)
}

// -- Panel Handlers --

func (h *Handler) GetPanelOrderset(c echo.Context) error {
	specID, err := intParam(c, "specId")
	if err != nil {
		return err
	}
	secID, err := intParam(c, "secId")
	if err != nil {
		return err
	}
	panels, err := h.svc.PanelOrderset(c.Request().Context(), c.Param("accountId"), specID, secID)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, panels)
}

type replacePanelsRequest struct {
	EntityType string           `json:"entityType"`
	EntityID   string           `json:"entityId"`
	SpecID     int              `json:"specId"`
	SecID      int              `json:"secId"`
	Panels     []PanelPlacement `json:"panels"`
}

func (h *Handler) ReplacePanelOrderset(c echo.Context) error {
	var req replacePanelsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.ReplacePanelOrderset(c.Request().Context(), req.EntityType, req.EntityID, req.SpecID, req.SecID, req.Panels)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) DeletePanelOrderset(c echo.Context) error {
	entityType, entityID, specID, err := deleteTarget(c)
	if err != nil {
		return err
	}
	secID := 0
	if v := c.QueryParam("secId"); v != "" {
		secID, err = strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid secId")
		}
	}
	if err := h.svc.DeletePanelOrderset(c.Request().Context(), entityType, entityID, specID, secID); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Test Handlers --

func (h *Handler) GetTestOrderset(c echo.Context) error {
	specID, err := intParam(c, "specId")
	if err != nil {
		return err
	}
	panelID, err := intParam(c, "panelId")
	if err != nil {
		return err
	}
	tests, err := h.svc.TestOrderset(c.Request().Context(), c.Param("accountId"), specID, panelID)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, tests)
}

type replaceTestsRequest struct {
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	SpecID     int             `json:"specId"`
	PanelID    int             `json:"panelId"`
	Tests      []TestPlacement `json:"tests"`
}

func (h *Handler) ReplaceTestOrderset(c echo.Context) error {
	var req replaceTestsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.ReplaceTestOrderset(c.Request().Context(), req.EntityType, req.EntityID, req.SpecID, req.PanelID, req.Tests)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) DeleteTestOrderset(c echo.Context) error {
	entityType, entityID, specID, err := deleteTarget(c)
	if err != nil {
		return err
	}
	panelID := 0
	if v := c.QueryParam("panelId"); v != "" {
		panelID, err = strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid panelId")
		}
	}
	if err := h.svc.DeleteTestOrderset(c.Request().Context(), entityType, entityID, specID, panelID); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
