package imaging

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func multipartUpload(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile(UploadField, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandler_UploadDicom(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	body, contentType := multipartUpload(t, map[string][]byte{
		"a.dcm": makeDicomFile(t, "1.2.3.100", "1.2.3.10"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/x/dicom", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.caseID.String())

	if err := h.UploadDicom(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats Stats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.ProcessedFiles != 1 || stats.ImagesCreated != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHandler_UploadDicom_ZipArchive(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	for name, data := range map[string][]byte{
		"study/a.dcm": makeDicomFile(t, "1.2.3.100", "1.2.3.10"),
		"study/b.dcm": makeDicomFile(t, "1.2.3.101", "1.2.3.10"),
	} {
		fw, _ := zw.Create(name)
		fw.Write(data)
	}
	zw.Close()

	body, contentType := multipartUpload(t, map[string][]byte{"upload.zip": zipBuf.Bytes()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/x/dicom", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.caseID.String())

	if err := h.UploadDicom(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats Stats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalFiles != 2 || stats.ProcessedFiles != 2 {
		t.Errorf("stats = %+v, want 2 processed", stats)
	}
}

func TestHandler_UploadDicom_NoFiles(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/x/dicom", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.caseID.String())

	if err := h.UploadDicom(c); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestHandler_UploadDicom_InvalidArchive(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	body, contentType := multipartUpload(t, map[string][]byte{"broken.zip": []byte("not a zip")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/x/dicom", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.caseID.String())

	err := h.UploadDicom(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}

func TestHandler_DeleteDicom(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cases/x/dicom", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.caseID.String())

	if err := h.DeleteDicom(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_DownloadImage(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	if _, err := env.svc.Ingest(context.Background(), env.caseID, []InputFile{
		{Name: "a.dcm", Data: makeDicomFile(t, "1.2.3.100", "1.2.3.10")},
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	var img *Image
	for _, i := range env.repo.images {
		img = i
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/images/x/file", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(img.ID.String())

	if err := h.DownloadImage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "attachment") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, "application/dicom") {
		t.Errorf("Content-Type = %q", got)
	}
}
