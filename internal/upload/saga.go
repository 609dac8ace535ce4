// Package upload sends company images one at a time and keeps track of
// what has already been stored, so a failure part way through can undo the
// earlier uploads when compensation is enabled.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/model"
)

// Uploader is the part of the API client the saga needs.
type Uploader interface {
	UploadCompanyImage(ctx context.Context, companyID model.ID, f apiclient.ImageFile) (model.Image, error)
	DeleteCompanyImage(ctx context.Context, companyID, imageID model.ID) error
}

// Result lists what happened to each file.
type Result struct {
	Uploaded    []model.Image `json:"uploaded"`
	Compensated []model.Image `json:"compensated,omitempty"` // deleted again after a failure
	Orphaned    []model.Image `json:"orphaned,omitempty"`    // left in storage after a failure
	Skipped     []string      `json:"skipped,omitempty"`     // files never attempted
}

// Saga uploads sequentially. With Compensate set, a failed upload deletes
// the images stored before it, newest first; otherwise they are left in
// place and reported as orphaned.
type Saga struct {
	Uploader   Uploader
	Compensate bool
}

// Run uploads files in order and stops at the first failure.
func (s Saga) Run(ctx context.Context, companyID model.ID, files []apiclient.ImageFile) (Result, error) {
	res := Result{Uploaded: []model.Image{}}
	for i, f := range files {
		img, err := s.Uploader.UploadCompanyImage(ctx, companyID, f)
		if err == nil {
			res.Uploaded = append(res.Uploaded, img)
			continue
		}
		for _, rest := range files[i+1:] {
			res.Skipped = append(res.Skipped, rest.Name)
		}
		uploadErr := fmt.Errorf("upload %s: %w", f.Name, err)
		if !s.Compensate {
			res.Orphaned = res.Uploaded
			res.Uploaded = []model.Image{}
			if len(res.Orphaned) > 0 {
				log.Printf("upload: company=%s left %d orphaned image(s) after failure: %v", companyID, len(res.Orphaned), err)
			}
			return res, uploadErr
		}
		return s.compensate(ctx, companyID, res, uploadErr)
	}
	return res, nil
}

func (s Saga) compensate(ctx context.Context, companyID model.ID, res Result, cause error) (Result, error) {
	errs := []error{cause}
	uploaded := res.Uploaded
	res.Uploaded = []model.Image{}
	for i := len(uploaded) - 1; i >= 0; i-- {
		img := uploaded[i]
		if img.ID.IsZero() {
			res.Orphaned = append(res.Orphaned, img)
			continue
		}
		if err := s.Uploader.DeleteCompanyImage(ctx, companyID, img.ID); err != nil {
			log.Printf("upload: compensate company=%s image=%s failed: %v", companyID, img.ID, err)
			res.Orphaned = append(res.Orphaned, img)
			errs = append(errs, fmt.Errorf("compensate image %s: %w", img.ID, err))
			continue
		}
		res.Compensated = append(res.Compensated, img)
	}
	return res, errors.Join(errs...)
}
