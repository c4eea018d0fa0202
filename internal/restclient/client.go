// Package restclient talks to a json-server style REST backend and
// implements the same user and product stores as package repos.
//
// Records are expected in the shapes of package domain, with two allowances
// for data written by the older storefront: product stock may be stored as
// "count", and orders may use "orderId" and "date" with money as strings.
// Those are read as stock, id and createdAt. Stock writes set both "stock"
// and "count"; orders are always written in the current shape.
package restclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

const defaultTimeout = 10 * time.Second

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("restclient: %s %s: status %d", e.Method, e.Path, e.Code)
}

type Client struct {
	BaseURL string
	Timeout time.Duration
}

func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: defaultTimeout}
}

func (c *Client) url(path string, q url.Values) string {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends the request built by a and decodes a JSON answer into out.
// 404 becomes domain.ErrNotFound.
func (c *Client) do(method, path string, a *fiber.Agent, out any) error {
	code, body, errs := a.Timeout(c.Timeout).Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		applog.Error(nil, "store.request.fail", err, map[string]any{"method": method, "path": path})
		return fmt.Errorf("restclient: %s %s: %w", method, path, err)
	}
	if code == fiber.StatusNotFound {
		return domain.ErrNotFound
	}
	if code >= 400 {
		return &StatusError{Method: method, Path: path, Code: code}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("restclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(path string, q url.Values, out any) error {
	return c.do(fiber.MethodGet, path, fiber.Get(c.url(path, q)), out)
}

func (c *Client) send(method, path string, in, out any) error {
	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = fiber.Post(c.url(path, nil))
	case fiber.MethodPut:
		a = fiber.Put(c.url(path, nil))
	case fiber.MethodPatch:
		a = fiber.Patch(c.url(path, nil))
	case fiber.MethodDelete:
		a = fiber.Delete(c.url(path, nil))
	default:
		return fmt.Errorf("restclient: unsupported method %s", method)
	}
	if in != nil {
		a.JSON(in)
	}
	return c.do(method, path, a, out)
}

func escape(id string) string { return url.PathEscape(id) }
