package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/directory-admin/internal/envelope"
	"github.com/iliyamo/directory-admin/internal/model"
)

// ImageFile is one file picked in the company form.
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
	Index       int
	IsMain      bool
}

// UploadCompanyImage sends one image as multipart/form-data and returns the
// stored image record.
func (c *Client) UploadCompanyImage(ctx context.Context, companyID model.ID, f ImageFile) (model.Image, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", f.Name)
	if err != nil {
		return model.Image{}, err
	}
	if _, err := io.Copy(part, f.Data); err != nil {
		return model.Image{}, fmt.Errorf("read %s: %w", f.Name, err)
	}
	_ = w.WriteField("index", strconv.Itoa(f.Index))
	_ = w.WriteField("isMain", strconv.FormatBool(f.IsMain))
	if err := w.Close(); err != nil {
		return model.Image{}, err
	}

	path := "/company/" + url.PathEscape(companyID.String()) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return model.Image{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	body, err := c.send(req, "Failed to upload "+f.Name)
	if err != nil {
		return model.Image{}, err
	}
	if len(body) == 0 {
		return model.Image{Index: f.Index, IsMain: f.IsMain}, nil
	}
	img, err := envelope.DecodeOne[model.Image](body)
	if err != nil {
		return model.Image{}, err
	}
	return img, nil
}

// DeleteCompanyImage removes one stored image of a company.
func (c *Client) DeleteCompanyImage(ctx context.Context, companyID, imageID model.ID) error {
	path := "/company/" + url.PathEscape(companyID.String()) + "/images/" + url.PathEscape(imageID.String())
	_, err := c.do(ctx, http.MethodDelete, path, nil, "Failed to delete image")
	return err
}
