package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Request describes one backend call
type Request struct {
	Method string
	// Path is a route template such as /companies/{id}
	Path       string
	PathParams map[string]string
	Query      url.Values
	Header     map[string]string

	// At most one body source is used, in this order
	Form        *Multipart
	Body        interface{}
	Raw         io.Reader
	ContentType string

	// Route overrides the metrics label, which defaults to Path
	Route string
}

// Get builds a GET request
func Get(path string) *Request {
	return &Request{Method: http.MethodGet, Path: path}
}

// Post builds a POST request with a JSON body
func Post(path string, body interface{}) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

// Put builds a PUT request with a JSON body
func Put(path string, body interface{}) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body}
}

// Patch builds a PATCH request with a JSON body
func Patch(path string, body interface{}) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body}
}

// Delete builds a DELETE request
func Delete(path string) *Request {
	return &Request{Method: http.MethodDelete, Path: path}
}

// Param sets a path parameter
func (r *Request) Param(name, value string) *Request {
	if r.PathParams == nil {
		r.PathParams = make(map[string]string)
	}
	r.PathParams[name] = value
	return r
}

// ID sets the {id} path parameter
func (r *Request) ID(id int64) *Request {
	return r.Param("id", strconv.FormatInt(id, 10))
}

// With adds a query parameter; empty values are skipped
func (r *Request) With(key, value string) *Request {
	if value == "" {
		return r
	}
	if r.Query == nil {
		r.Query = url.Values{}
	}
	r.Query.Set(key, value)
	return r
}

// WithInt adds an integer query parameter
func (r *Request) WithInt(key string, value int64) *Request {
	return r.With(key, strconv.FormatInt(value, 10))
}

// Multipart sets a multipart body
func (r *Request) Multipart(form *Multipart) *Request {
	r.Form = form
	return r
}

// route returns the metrics label
func (r *Request) route() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Path
}

// expandPath substitutes {name} placeholders with escaped parameter values
func (r *Request) expandPath() (string, error) {
	path := r.Path
	for name, value := range r.PathParams {
		placeholder := "{" + name + "}"
		if !strings.Contains(path, placeholder) {
			return "", fmt.Errorf("path %s has no parameter %s", r.Path, name)
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("path %s has unbound parameters", r.Path)
	}
	return path, nil
}

// Multipart collects form fields and files for an upload
type Multipart struct {
	parts []part
}

type part struct {
	name        string
	fileName    string
	contentType string
	value       []byte
	reader      io.Reader
}

// NewMultipart creates an empty form
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field adds a plain text field
func (m *Multipart) Field(name, value string) *Multipart {
	m.parts = append(m.parts, part{name: name, value: []byte(value)})
	return m
}

// JSONField adds a field holding v encoded as application/json
func (m *Multipart) JSONField(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode form field %s: %w", name, err)
	}
	m.parts = append(m.parts, part{name: name, contentType: "application/json", value: data})
	return nil
}

// File adds a file part read from r when the form is encoded
func (m *Multipart) File(name, fileName string, r io.Reader) *Multipart {
	m.parts = append(m.parts, part{name: name, fileName: fileName, reader: r})
	return m
}

// Len returns the number of parts
func (m *Multipart) Len() int {
	return len(m.parts)
}

// encode writes every part and returns the body with its boundary content type
func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, p := range m.parts {
		switch {
		case p.reader != nil:
			fw, err := w.CreateFormFile(p.name, p.fileName)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create file part %s: %w", p.fileName, err)
			}
			if _, err := io.Copy(fw, p.reader); err != nil {
				return nil, "", fmt.Errorf("failed to read file %s: %w", p.fileName, err)
			}
		case p.contentType != "":
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, p.name))
			h.Set("Content-Type", p.contentType)
			pw, err := w.CreatePart(h)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create part %s: %w", p.name, err)
			}
			if _, err := pw.Write(p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write part %s: %w", p.name, err)
			}
		default:
			if err := w.WriteField(p.name, string(p.value)); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", p.name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

type multipartKey struct{}

// markMultipart records the boundary content type for a multipart request
func markMultipart(ctx context.Context, contentType string) context.Context {
	return context.WithValue(ctx, multipartKey{}, contentType)
}

// multipartContentType returns the boundary content type of a multipart request
func multipartContentType(ctx context.Context) (string, bool) {
	ct, ok := ctx.Value(multipartKey{}).(string)
	return ct, ok
}
