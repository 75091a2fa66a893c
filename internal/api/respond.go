package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func principal(c *gin.Context) service.Principal {
	return service.Principal{UserID: middleware.UserID(c)}
}

func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// pathID parses a positive numeric path parameter. Anything else cannot name
// an entity and is reported as not found.
func pathID(c *gin.Context, resource string) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fail(c, apperrors.NotFound(resource, raw))
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst. Validation is left to the services.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, decodeError(err))
		return false
	}
	return true
}

// decodeError classifies a JSON decoding failure without echoing decoder
// internals such as Go type names back to the client.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.Invalid("request body must not be empty")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		if isIntegerKind(typeErr.Type) {
			return apperrors.OutOfRange(typeErr.Field, "must be an integer")
		}
		return apperrors.Malformed(typeErr.Field, "has the wrong type")
	}
	return apperrors.Invalid("malformed request body")
}

func isIntegerKind(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// positiveQuery reads an optional positive integer query parameter.
func positiveQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Invalid("%s must be a positive integer", name)
	}
	return n, nil
}

// Pagination reads the page and limit query parameters and builds the
// paginated envelope with links to neighbouring pages.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

func (p Pagination) parse(c *gin.Context) (repository.Page, error) {
	number, err := positiveQuery(c, "page", 1)
	if err != nil {
		return repository.Page{}, err
	}
	size, err := positiveQuery(c, "limit", p.DefaultSize)
	if err != nil {
		return repository.Page{}, err
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return repository.Page{Number: number, Size: size}, nil
}

func newPage[T any](c *gin.Context, page repository.Page, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: count, Results: results}
	if int64(page.Number*page.Size) < count {
		out.Next = pageLink(c, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageLink(c, page.Number-1)
	}
	return out
}

func pageLink(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(number))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
