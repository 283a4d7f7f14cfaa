package imaging

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radcase/radcase/internal/dicom"
	"github.com/radcase/radcase/internal/platform/auth"
	"github.com/radcase/radcase/pkg/pagination"
)

// UploadField is the multipart form field carrying DICOM files or zip
// archives of them.
const UploadField = "dicom_files"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/cases/:id/series", h.ListCaseSeries)
	api.GET("/series", h.ListSeries)
	api.GET("/series/:id", h.GetSeries)
	api.GET("/images/:id", h.GetImage)
	api.GET("/images/:id/file", h.DownloadImage)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/cases/:id/dicom", h.UploadDicom)
	adminGroup.DELETE("/cases/:id/dicom", h.DeleteDicom)
}

// UploadDicom ingests a batch of DICOM files for a case. Zip uploads are
// unpacked; everything else is treated as a single candidate file.
func (h *Handler) UploadDicom(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}
	uploads := form.File[UploadField]
	if len(uploads) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("no files in field %q", UploadField))
	}

	var files []InputFile
	for _, fh := range uploads {
		data, err := readUpload(fh)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read upload %s: %v", fh.Filename, err))
		}
		if strings.EqualFold(filepath.Ext(fh.Filename), ".zip") {
			entries, err := dicom.UnpackArchive(data)
			if err != nil {
				if errors.Is(err, dicom.ErrInvalidArchive) {
					return echo.NewHTTPError(http.StatusBadRequest, err.Error())
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			for _, e := range entries {
				files = append(files, InputFile{Name: e.Name, Data: e.Data})
			}
			continue
		}
		files = append(files, InputFile{Name: fh.Filename, Data: data})
	}

	stats, err := h.svc.Ingest(c.Request().Context(), caseID, files)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) DeleteDicom(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ok := h.svc.DeleteCaseData(c.Request().Context(), caseID)
	return c.JSON(http.StatusOK, map[string]bool{"success": ok})
}

func (h *Handler) ListCaseSeries(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	list, total, err := h.svc.ListSeries(c.Request().Context(), caseID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListSeries(c echo.Context) error {
	pg := pagination.FromContext(c)

	caseID := uuid.Nil
	if q := c.QueryParam("case_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid case_id")
		}
		caseID = id
	}

	list, total, err := h.svc.ListSeries(c.Request().Context(), caseID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetSeries(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	detail, err := h.svc.GetSeriesDetail(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "series not found")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	img, err := h.svc.GetImage(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.JSON(http.StatusOK, img)
}

// DownloadImage streams the stored anonymized file. DICOM has no stdlib
// MIME registration, so unknown extensions fall back to application/dicom.
func (h *Handler) DownloadImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	img, err := h.svc.GetImage(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}

	f, err := os.Open(img.FilePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image file missing")
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(img.FilePath))
	if contentType == "" {
		contentType = "application/dicom"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filepath.Base(img.FilePath)))
	return c.Stream(http.StatusOK, contentType, f)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
