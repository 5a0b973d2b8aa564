// internal/app/features/adminapi/content.go
package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/ccbportal/internal/app/features/shared/records"
	contentstore "github.com/dalemusser/ccbportal/internal/app/store/content"
	"github.com/dalemusser/ccbportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ccbportal/internal/app/system/inputval"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/app/system/uploads"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	maxFormMemory = 8 << 20
	imagePrefix   = "news"
)

var errBadJSON = errors.New("Invalid JSON data")

// input is a decoded create/update body.
type input struct {
	values      models.Record
	image       *multipart.FileHeader
	removeImage bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/admin/{kind}/                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	k, ok := kindParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := h.Records.List(ctx, k, false)
	if err != nil {
		h.Log.Error("list content failed", zap.String("kind", string(k)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching "+k.Phrase())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"count":     len(recs),
		k.ListKey(): recs,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/admin/{kind}/create/                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	k, ok := kindParam(w, r)
	if !ok {
		return
	}
	in, err := readInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc := models.SchemaFor(k)
	sanitize(sc, in.values)

	doc, err := sc.BuildCreate(in.values)
	if err == nil {
		err = checkEmails(sc, doc)
	}
	if err != nil {
		h.writeValidation(w, k, "create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if k == models.KindPersonnel {
		if !h.departmentExists(ctx, w, doc) {
			return
		}
	}

	var stored string
	if k == models.KindNews && in.image != nil {
		stored, err = h.saveImage(ctx, in.image)
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		doc[records.ImagePathField] = stored
	}

	rec, err := h.Content.Create(ctx, k, doc)
	if err != nil {
		h.Log.Error("create content failed", zap.String("kind", string(k)), zap.Error(err))
		h.discardImage(ctx, stored)
		writeError(w, http.StatusInternalServerError, "Error creating "+strings.ToLower(k.Noun()))
		return
	}
	h.respondRecord(ctx, w, http.StatusCreated, k, rec, "created")
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT|PATCH /api/admin/{kind}/{id}/  (or POST with a method override)        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	k, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, k)
	if !ok {
		return
	}
	in, err := readInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.Method == http.MethodPost && !methodOverridden(r, in.values) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sc := models.SchemaFor(k)
	sanitize(sc, in.values)

	set, err := sc.BuildUpdate(in.values)
	if err == nil {
		err = checkEmails(sc, set)
	}
	if err != nil {
		h.writeValidation(w, k, "update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Content.Get(ctx, k, id)
	if errors.Is(err, contentstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, k.Noun()+" not found")
		return
	}
	if err != nil {
		h.Log.Error("load content failed", zap.String("kind", string(k)), zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating "+strings.ToLower(k.Noun()))
		return
	}

	if k == models.KindPersonnel && set.Has("department_id") {
		if !h.departmentExists(ctx, w, set) {
			return
		}
	}

	// News image: removal wins over a new upload.
	oldImage := existing.String(records.ImagePathField)
	var stored string
	if k == models.KindNews {
		switch {
		case in.removeImage:
			set[records.ImagePathField] = ""
		case in.image != nil:
			stored, err = h.saveImage(ctx, in.image)
			if err != nil {
				h.writeUploadError(w, err)
				return
			}
			set[records.ImagePathField] = stored
		}
	}

	rec, err := h.Content.Update(ctx, k, id, set)
	if err != nil {
		h.discardImage(ctx, stored)
		if errors.Is(err, contentstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, k.Noun()+" not found")
			return
		}
		h.Log.Error("update content failed", zap.String("kind", string(k)), zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error updating "+strings.ToLower(k.Noun()))
		return
	}
	if k == models.KindNews && oldImage != "" && rec.String(records.ImagePathField) != oldImage {
		h.discardImage(ctx, oldImage)
	}
	h.respondRecord(ctx, w, http.StatusOK, k, rec, "updated")
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/admin/{kind}/{id}/delete/                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	k, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, k)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Content.Get(ctx, k, id)
	if errors.Is(err, contentstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, k.Noun()+" not found")
		return
	}
	if err != nil {
		h.Log.Error("load content failed", zap.String("kind", string(k)), zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error deleting "+strings.ToLower(k.Noun()))
		return
	}

	if k == models.KindDepartments {
		// Personnel belong to their department and go with it.
		n, err := h.Content.DeleteWhere(ctx, models.KindPersonnel, bson.M{"department_id": id})
		if err != nil {
			h.Log.Error("delete department personnel failed", zap.Int64("department_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error deleting department")
			return
		}
		if n > 0 {
			h.Log.Info("department personnel deleted", zap.Int64("department_id", id), zap.Int64("count", n))
		}
	}

	if err := h.Content.Delete(ctx, k, id); err != nil {
		if errors.Is(err, contentstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, k.Noun()+" not found")
			return
		}
		h.Log.Error("delete content failed", zap.String("kind", string(k)), zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error deleting "+strings.ToLower(k.Noun()))
		return
	}
	if k == models.KindNews {
		h.discardImage(ctx, existing.String(records.ImagePathField))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": k.Noun() + " deleted successfully",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) respondRecord(ctx context.Context, w http.ResponseWriter, status int, k models.Kind, rec models.Record, verb string) {
	if err := h.Records.Present(ctx, k, rec); err != nil {
		h.Log.Warn("present record failed", zap.String("kind", string(k)), zap.Error(err))
	}
	writeJSON(w, status, map[string]any{
		"status":    "success",
		"message":   fmt.Sprintf("%s %s successfully", k.Noun(), verb),
		k.ItemKey(): rec,
	})
}

func (h *Handler) writeValidation(w http.ResponseWriter, k models.Kind, op string, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Message)
		return
	}
	h.Log.Error("build content failed", zap.String("kind", string(k)), zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusBadRequest, err.Error())
}

// departmentExists answers 400 and returns false when doc references a
// department that is not there.
func (h *Handler) departmentExists(ctx context.Context, w http.ResponseWriter, doc models.Record) bool {
	id, _ := doc.Int("department_id")
	_, err := h.Content.Get(ctx, models.KindDepartments, id)
	if err == nil {
		return true
	}
	if errors.Is(err, contentstore.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Department not found")
		return false
	}
	h.Log.Error("department lookup failed", zap.Int64("department_id", id), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Error checking department")
	return false
}

func (h *Handler) saveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if h.Images == nil {
		return "", errors.New("image storage is not configured")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := uploads.SaveImage(ctx, h.Images, imagePrefix, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	h.Log.Info("news image stored", zap.String("path", info.Path), zap.Int64("size", info.Size))
	return info.Path, nil
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, uploads.ErrNotImage) {
		writeError(w, http.StatusBadRequest, "Uploaded file must be an image")
		return
	}
	h.Log.Error("store news image failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// discardImage removes a stored image, logging rather than failing.
func (h *Handler) discardImage(ctx context.Context, path string) {
	if path == "" || h.Images == nil {
		return
	}
	if err := uploads.Remove(ctx, h.Images, path); err != nil {
		h.Log.Warn("failed to delete news image", zap.String("path", path), zap.Error(err))
	}
}

// readInput decodes a JSON, multipart or urlencoded body.
func readInput(r *http.Request) (input, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return input{}, errors.New("Invalid form data")
		}
		in := input{values: formValues(r.MultipartForm.Value)}
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			in.image = files[0]
		}
		in.removeImage = in.values.Bool("remove_image")
		return in, nil

	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return input{}, errors.New("Invalid form data")
		}
		in := input{values: formValues(r.PostForm)}
		in.removeImage = in.values.Bool("remove_image")
		return in, nil
	}

	values := models.Record{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return input{}, errBadJSON
	}
	return input{values: values, removeImage: values.Bool("remove_image")}, nil
}

func formValues(form map[string][]string) models.Record {
	out := make(models.Record, len(form))
	for k, v := range form {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func methodOverridden(r *http.Request, values models.Record) bool {
	if strings.EqualFold(r.Header.Get("X-HTTP-Method-Override"), http.MethodPut) {
		return true
	}
	return strings.EqualFold(values.String("_method"), http.MethodPut)
}

// sanitize cleans string inputs: free text is kept as typed unless it carries
// markup, which is reduced to safe formatting; single-line fields lose all
// markup.
func sanitize(sc *models.Schema, in models.Record) {
	for _, f := range sc.Fields {
		s, ok := in[f.Name].(string)
		if !ok {
			continue
		}
		switch f.Type {
		case models.FieldText:
			in[f.Name] = htmlsanitize.CleanText(s)
		case models.FieldString, models.FieldEmail:
			in[f.Name] = htmlsanitize.StripTags(s)
		}
	}
}

func checkEmails(sc *models.Schema, doc models.Record) error {
	for _, f := range sc.Fields {
		if f.Type != models.FieldEmail {
			continue
		}
		if s := doc.String(f.Name); s != "" && !inputval.IsValidEmail(s) {
			return &models.ValidationError{Field: f.Name, Message: fmt.Sprintf("Invalid email address for %q", f.Name)}
		}
	}
	return nil
}
