// Package handler exposes the venue, artist and show directory over HTTP.
// Reads answer with JSON payloads; form submissions answer with a
// 303 redirect and a flash message picked up by the next read.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/logger"
	"github.com/PA55ION/fyyur/internal/service"
)

// Deps bundles what every handler needs.
type Deps struct {
	Query  *service.QueryService
	Mutate *service.MutationService
	Log    *zap.Logger
}

// Flash categories.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the page after a redirect.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// page wraps every read response.
type page struct {
	Data  any    `json:"data"`
	Flash *Flash `json:"flash,omitempty"`
}

// render writes data with any pending flash message and clears it.
func render(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, page{Data: data, Flash: takeFlash(c)})
}

func setFlash(c echo.Context, category, message string) {
	raw, _ := json.Marshal(Flash{Category: category, Message: message})
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlash(c echo.Context) *Flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:    flashCookie,
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if json.Unmarshal(raw, &f) != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirect finishes a form submission.
func redirect(c echo.Context, to, category, message string) error {
	setFlash(c, category, message)
	return c.Redirect(http.StatusSeeOther, to)
}

// parseID reads the :id path parameter.  Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// readError maps a service error for a read endpoint.
func readError(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}

// logMutation records why a submission failed; the client only sees the flash.
func (d Deps) logMutation(c echo.Context, op string, err error) {
	l := logger.FromEcho(c, d.Log)
	if l == nil {
		return
	}
	switch {
	case errors.Is(err, service.ErrConstraintViolation), errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrNotFound):
		l.Warn(op+" rejected", zap.Error(err))
	default:
		l.Error(op+" failed", zap.Error(err))
	}
}

// ErrorHandler renders the not-found and server-error pages.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			if l := logger.FromEcho(c, log); l != nil {
				l.Error("request failed", zap.Error(err))
			}
		}

		body := echo.Map{"status": code}
		switch code {
		case http.StatusNotFound:
			body["error"] = "not_found"
			body["message"] = "The page you are looking for does not exist."
		case http.StatusInternalServerError:
			body["error"] = "server_error"
			body["message"] = "Something went wrong on our end."
		default:
			body["error"] = strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))
			if he != nil {
				body["message"] = he.Message
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// checked interprets an HTML checkbox value.
func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

// startTimeLayouts are accepted for the show start_time field, in order.
var startTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// parseStartTime reads a form timestamp.  Values without a zone are taken
// as UTC.
func parseStartTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid start_time %q", service.ErrConstraintViolation, v)
}

// FormTimeLayout is how start times are prefilled in the show form.
const FormTimeLayout = "2006-01-02 15:04:05"
