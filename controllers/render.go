package controllers

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/models"
)

// layoutData feeds the "layout" template.
type layoutData struct {
	Title           string
	RedirectTo      string
	RedirectSeconds string
	Header          template.HTML
	Body            template.HTML
	Notifications   []models.Notification
}

// wantsHTML reports whether the caller is a browser form rather than an API
// client. Requests without an Accept header get JSON.
func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

// refererPath is the path of the page the request came from, or "".
func refererPath(c *gin.Context) string {
	ref := c.Request.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Path
}

// redirectBack sends the browser back to the page the form was posted from.
// Only the path of the Referer is used, so the redirect stays on this host.
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if path := refererPath(c); path != "" {
		target = path
	}
	c.Redirect(http.StatusSeeOther, target)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func respondError(c *gin.Context, status int, message string, err error) {
	resp := models.ErrorResponse{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}
