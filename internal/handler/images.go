package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/model"
	q "github.com/iliyamo/directory-admin/internal/queue"
	"github.com/iliyamo/directory-admin/internal/upload"
)

const maxUploadMemory = 32 << 20

// UploadImages serves POST /v1/companies/:id/images.  Files come in the
// multipart field "images" and are sent upstream one at a time.  Each gets
// index startIndex+position; the file at mainIndex is marked main.
// mainIndex defaults to 0 for a fresh gallery (startIndex 0) and to none
// otherwise.
func (h *Console) UploadImages(c echo.Context) error {
	companyID, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := c.Request().ParseMultipartForm(maxUploadMemory); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid multipart body"})
	}
	form := c.Request().MultipartForm
	headers := form.File["images"]
	if len(headers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "images are required"})
	}
	start := formInt(form, "startIndex", 0)
	mainDefault := -1
	if start == 0 {
		mainDefault = 0
	}
	main := formInt(form, "mainIndex", mainDefault)

	files := make([]apiclient.ImageFile, 0, len(headers))
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read " + fh.Filename})
		}
		defer f.Close()
		files = append(files, apiclient.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
			Index:       start + i,
			IsMain:      i == main,
		})
	}

	saga := upload.Saga{Uploader: h.upstream(c), Compensate: h.Compensate}
	res, err := saga.Run(c.Request().Context(), companyID, files)
	// orphaned images are stored too; compensated ones were stored and
	// removed again
	for _, set := range [][]model.Image{res.Uploaded, res.Orphaned, res.Compensated} {
		for _, img := range set {
			h.record(c, q.ActionUpload, "company_image", img.ID.String())
		}
	}
	for _, img := range res.Compensated {
		h.record(c, q.ActionDelete, "company_image", img.ID.String())
	}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return h.fail(c, err, "")
		}
		return c.JSON(errStatus(err), echo.Map{"error": errText(err, "Failed to upload images"), "result": res})
	}
	return c.JSON(http.StatusCreated, res)
}

// DeleteImage serves DELETE /v1/companies/:id/images/:imageId.
func (h *Console) DeleteImage(c echo.Context) error {
	companyID, ok := idParam(c, "id")
	imageID, ok2 := idParam(c, "imageId")
	if !ok || !ok2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.upstream(c).DeleteCompanyImage(c.Request().Context(), companyID, imageID); err != nil {
		return h.fail(c, err, "Failed to delete image")
	}
	h.record(c, q.ActionDelete, "company_image", imageID.String())
	return c.NoContent(http.StatusNoContent)
}

func formInt(form *multipart.Form, key string, def int) int {
	vals := form.Value[key]
	if len(vals) == 0 {
		return def
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return def
	}
	return n
}
