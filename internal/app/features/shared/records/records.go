// internal/app/features/shared/records/records.go
package records

import (
	"context"

	contentstore "github.com/dalemusser/ccbportal/internal/app/store/content"
	"github.com/dalemusser/ccbportal/internal/domain/models"
)

// ImagePathField holds the storage path of an uploaded news image. The API
// never exposes it; clients see the public URL under "image".
const ImagePathField = "image_path"

// URLer turns a storage path into a public URL.
type URLer interface {
	URL(path string) string
}

// Presenter shapes stored records into their API form.
type Presenter struct {
	Content *contentstore.Store
	Images  URLer
}

// List loads the records of k and presents them.
func (p *Presenter) List(ctx context.Context, k models.Kind, activeOnly bool) ([]models.Record, error) {
	recs, err := p.Content.List(ctx, k, activeOnly)
	if err != nil {
		return nil, err
	}
	if err := p.Present(ctx, k, recs...); err != nil {
		return nil, err
	}
	return recs, nil
}

// Present adds derived fields in place.
func (p *Presenter) Present(ctx context.Context, k models.Kind, recs ...models.Record) error {
	var depts map[int64]string
	if k == models.KindPersonnel && len(recs) > 0 {
		var err error
		if depts, err = p.Content.DepartmentNames(ctx); err != nil {
			return err
		}
	}
	for _, rec := range recs {
		models.Derive(k, rec)
		switch k {
		case models.KindNews:
			rec["image"] = p.imageURL(rec.String(ImagePathField))
			delete(rec, ImagePathField)
		case models.KindPersonnel:
			id, _ := rec.Int("department_id")
			rec["department_name"] = depts[id]
		}
	}
	return nil
}

func (p *Presenter) imageURL(path string) any {
	if path == "" {
		return nil
	}
	if p.Images == nil {
		return path
	}
	return p.Images.URL(path)
}
