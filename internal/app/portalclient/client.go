// internal/app/portalclient/client.go
//
// Package portalclient is the console's HTTP client for the admin REST API.
// Each Client carries its own cookie jar, so one Client corresponds to one
// signed-in backend session.
package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

// User is the admin account as reported by the backend.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// File is an upload attached to a multipart submit.
type File struct {
	Field       string // form field name, "image" when empty
	Name        string
	ContentType string
	Data        io.Reader
}

// Submission is one create (ID == 0) or update of a record.
type Submission struct {
	Kind      models.Kind
	ID        int64
	Payload   models.Record
	Multipart bool
	File      *File // multipart only; nil when no file was chosen
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New returns a Client for the API rooted at baseURL (for example
// "http://localhost:8080"). A nil httpClient gets a default one; either way
// a fresh cookie jar is installed.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	hc.Jar = jar
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		logger:     logger,
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| auth                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type authCheckResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user"`
}

// AuthCheck asks the backend whether this client's session is signed in.
// It returns nil, nil when it is not.
func (c *Client) AuthCheck(ctx context.Context) (*User, error) {
	var resp authCheckResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/auth-check/", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || !resp.Authenticated || resp.User == nil {
		return nil, nil
	}
	return resp.User, nil
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// Login signs in with username and password. The session cookie lands in
// the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/login/", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/admin/logout/", nil, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| resources                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func resourcePath(k models.Kind, suffix string) string {
	return "/api/admin/" + string(k) + "/" + suffix
}

// List fetches every record of kind k. A response without the list key
// yields an empty list.
func (c *Client) List(ctx context.Context, k models.Kind) ([]models.Record, error) {
	var resp map[string]json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, resourcePath(k, ""), nil, &resp); err != nil {
		return nil, err
	}
	raw, ok := resp[k.ListKey()]
	if !ok || string(raw) == "null" {
		return []models.Record{}, nil
	}
	var list []models.Record
	if err := decode(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k.ListKey(), err)
	}
	if list == nil {
		list = []models.Record{}
	}
	return list, nil
}

// Submit creates or updates a record and returns the record the server
// stored. Multipart updates are sent as POST with _method=PUT and the
// X-HTTP-Method-Override header.
func (c *Client) Submit(ctx context.Context, s Submission) (models.Record, error) {
	path := resourcePath(s.Kind, "create/")
	method := http.MethodPost
	if s.ID != 0 {
		path = resourcePath(s.Kind, strconv.FormatInt(s.ID, 10)+"/")
		method = http.MethodPut
	}

	var resp map[string]json.RawMessage
	var err error
	if s.Multipart {
		err = c.doMultipart(ctx, path, s.ID != 0, s.Payload, s.File, &resp)
	} else {
		err = c.doJSON(ctx, method, path, s.Payload, &resp)
	}
	if err != nil {
		return nil, err
	}

	var rec models.Record
	if raw, ok := resp[s.Kind.ItemKey()]; ok {
		if err := decode(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.Kind.ItemKey(), err)
		}
	}
	return rec, nil
}

func (c *Client) Delete(ctx context.Context, k models.Kind, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, resourcePath(k, strconv.FormatInt(id, 10)+"/delete/"), nil, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| transport                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, update bool, fields models.Record, file *File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if update {
		if err := mw.WriteField("_method", "PUT"); err != nil {
			return err
		}
	}
	for name := range fields {
		if err := mw.WriteField(name, fields.String(name)); err != nil {
			return err
		}
	}
	if file != nil && file.Data != nil {
		field := file.Field
		if field == "" {
			field = "image"
		}
		part, err := createFilePart(mw, field, file.Name, file.ContentType)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Data); err != nil {
			return fmt.Errorf("copy upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if update {
		req.Header.Set("X-HTTP-Method-Override", "PUT")
	}
	return c.do(req, out)
}

func createFilePart(mw *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	return mw.CreatePart(h)
}

type clientIPKey struct{}

// WithClientIP marks ctx with the address of the browser a request is made
// for. Requests sent under ctx carry it in X-Forwarded-For, so the backend's
// per-IP login limit counts browsers rather than this server.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func (c *Client) do(req *http.Request, out any) error {
	if ip, _ := req.Context().Value(clientIPKey{}).(string); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("portal api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := decode(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// errorMessage picks message, detail or error from a JSON error body.
func errorMessage(status int, body []byte) string {
	var fields map[string]any
	if json.Unmarshal(body, &fields) == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return "HTTP error! status: " + strconv.Itoa(status)
}

// decode keeps numbers as json.Number so large ids survive.
func decode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
