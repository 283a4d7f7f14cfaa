package reports

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radcase/radcase/internal/platform/auth"
	"github.com/radcase/radcase/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports", h.ListReports)
	api.POST("/reports", h.CreateReport)
	api.GET("/reports/:id", h.GetReport)
	api.PUT("/reports/:id", h.UpdateReport)
	api.DELETE("/reports/:id", h.DeleteReport)
	api.POST("/reports/:id/submit", h.SubmitReport)

	api.GET("/feedback", h.ListFeedback)
	api.GET("/feedback/:id", h.GetFeedback)
	api.POST("/feedback/:id/flag", h.FlagFeedback)
}

func (h *Handler) CreateReport(c echo.Context) error {
	author, err := auth.SubjectUUID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var rpt Report
	if err := c.Bind(&rpt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rpt.AuthorID = author
	if err := h.svc.CreateReport(c.Request().Context(), &rpt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rpt)
}

func (h *Handler) GetReport(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	rpt, err := h.svc.GetReport(c.Request().Context(), id, author)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) ListReports(c echo.Context) error {
	author, err := auth.SubjectUUID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	pg := pagination.FromContext(c)
	list, total, err := h.svc.ListReports(c.Request().Context(), author, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateReport(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	var rpt Report
	if err := c.Bind(&rpt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rpt.ID = id
	rpt.AuthorID = author
	if err := h.svc.UpdateReport(c.Request().Context(), &rpt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReport(c.Request().Context(), id, author); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SubmitReport(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	rpt, err := h.svc.SubmitReport(c.Request().Context(), id, author)
	if err != nil {
		if errors.Is(err, ErrNotDraft) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) ListFeedback(c echo.Context) error {
	author, err := auth.SubjectUUID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	pg := pagination.FromContext(c)
	list, total, err := h.svc.ListFeedback(c.Request().Context(), author, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetFeedback(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	fb, err := h.svc.GetFeedback(c.Request().Context(), id, author)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	return c.JSON(http.StatusOK, fb)
}

func (h *Handler) FlagFeedback(c echo.Context) error {
	author, id, err := subjectAndID(c)
	if err != nil {
		return err
	}
	if err := h.svc.FlagFeedback(c.Request().Context(), id, author); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "feedback flagged"})
}

func subjectAndID(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	author, err := auth.SubjectUUID(c.Request().Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return author, id, nil
}
