package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/diverse/diverse/internal/platform/auth"
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
	readGroup.GET("/entity-types", h.GetEntityTypes)
	readGroup.GET("/specialties", h.GetSpecialties)
	readGroup.GET("/sections", h.GetSections)
	readGroup.GET("/panels", h.GetPanels)
	readGroup.GET("/tests/name/:loinc", h.GetTestName)
	readGroup.GET("/tests/search", h.SearchTests)

	// Write endpoints - admin only
	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/specialties", h.CreateSpecialty)
	writeGroup.PUT("/specialties/:specId", h.UpdateSpecialty)
	writeGroup.DELETE("/specialties/:specId", h.DeleteSpecialty)
	writeGroup.POST("/panels", h.CreatePanel)
	writeGroup.PUT("/panels/:panelId", h.UpdatePanel)
	writeGroup.DELETE("/panels/:panelId", h.DeletePanel)
	writeGroup.POST("/tests/name", h.CreateTestName)
	writeGroup.PUT("/tests/name/:loinc", h.UpdateTestName)
	writeGroup.DELETE("/tests/name/:loinc", h.DeleteTestName)

	// Associations - admin and physician
	assocGroup := api.Group("", auth.RequireRole("admin", "physician"))
	assocGroup.POST("/tests/assoc", h.CreateTestAssoc)
	assocGroup.DELETE("/tests/assoc/:assocId", h.DeleteTestAssoc)
}

func catalogError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) GetEntityTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.EntityTypes())
}

func (h *Handler) GetSpecialties(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Specialties())
}

func (h *Handler) GetSections(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Sections())
}

func (h *Handler) GetPanels(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Panels())
}

type createSpecialtyRequest struct {
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
}

func (h *Handler) CreateSpecialty(c echo.Context) error {
	var req createSpecialtyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.svc.CreateSpecialty(c.Request().Context(), req.Name, req.AccountID)
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"specId": id})
}

func (h *Handler) UpdateSpecialty(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("specId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specId")
	}
	var req createSpecialtyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateSpecialty(c.Request().Context(), id, req.Name); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteSpecialty(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("specId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specId")
	}
	if err := h.svc.DeleteSpecialty(c.Request().Context(), id); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createPanelRequest struct {
	Name      string `json:"name"`
	SecID     int    `json:"secId"`
	Graphable bool   `json:"graphable"`
	AccountID string `json:"accountId"`
}

func (h *Handler) CreatePanel(c echo.Context) error {
	var req createPanelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := Panel{Name: req.Name, SecID: req.SecID, Graphable: req.Graphable}
	if err := h.svc.CreatePanel(c.Request().Context(), &p, req.AccountID); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"panelId": p.ID})
}

func (h *Handler) UpdatePanel(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("panelId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid panelId")
	}
	var req createPanelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdatePanel(c.Request().Context(), id, req.Name, req.Graphable); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeletePanel(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("panelId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid panelId")
	}
	if err := h.svc.DeletePanel(c.Request().Context(), id); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetTestName(c echo.Context) error {
	name, err := h.svc.TestName(c.Request().Context(), c.Param("loinc"))
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"loinc": c.Param("loinc"), "name": name})
}

type testNameRequest struct {
	Loinc     string `json:"loinc"`
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
}

func (h *Handler) CreateTestName(c echo.Context) error {
	var req testNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTestName(c.Request().Context(), req.Loinc, req.Name, req.AccountID); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "created"})
}

func (h *Handler) UpdateTestName(c echo.Context) error {
	var req testNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateTestName(c.Request().Context(), c.Param("loinc"), req.Name); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteTestName(c echo.Context) error {
	if err := h.svc.DeleteTestName(c.Request().Context(), c.Param("loinc")); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchTests(c echo.Context) error {
	matches, err := h.svc.SearchTests(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, matches)
}

type createAssocRequest struct {
	Loinc     string `json:"loinc"`
	CID       string `json:"cid"`
	PanelID   int    `json:"panelId"`
	SpecID    int    `json:"specId"`
	AccountID string `json:"accountId"`
}

func (h *Handler) CreateTestAssoc(c echo.Context) error {
	var req createAssocRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a := TestAssoc{Loinc: req.Loinc, CID: req.CID, PanelID: req.PanelID, SpecID: req.SpecID, CreatedBy: req.AccountID}
	if err := h.svc.CreateTestAssoc(c.Request().Context(), &a); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"assocId": a.ID})
}

func (h *Handler) DeleteTestAssoc(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("assocId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assocId")
	}
	if err := h.svc.DeleteTestAssoc(c.Request().Context(), id); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
