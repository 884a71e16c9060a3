package display

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/diverse/diverse/internal/domain/orderset"
	"github.com/diverse/diverse/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.POST("/tests/display/:accountId/:specId/:cid", h.GetTestsForDisplay)
	readGroup.POST("/tests/check", h.CheckTests)
}

type restrictRequest struct {
	Gender string `json:"gender"`
	Age    int    `json:"age"`
}

func (h *Handler) GetTestsForDisplay(c echo.Context) error {
	specID, err := strconv.Atoi(c.Param("specId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specId")
	}
	var restrict restrictRequest
	if err := c.Bind(&restrict); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	panels, err := h.svc.TestsForDisplay(c.Request().Context(), c.Param("accountId"), specID, c.Param("cid"),
		orderset.PatientFilter{Gender: restrict.Gender, Age: restrict.Age})
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid input: no panels or tests for parameters")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, panels)
}

func (h *Handler) CheckTests(c echo.Context) error {
	var panels []CheckPanel
	if err := c.Bind(&panels); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.CheckTests(panels))
}
