package server

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// shareLink builds the public URL of a stored file from the configured base
// or, failing that, from the scheme and host the client used.
func (srv *ShareServer) shareLink(ctx echo.Context, name string) string {
	base := srv.cfg.PublicURL
	if base == "" {
		base = ctx.Scheme() + "://" + ctx.Request().Host
	}
	return strings.TrimRight(base, "/") + StaticPrefix + "/" + url.PathEscape(name)
}

// storedName returns the :name parameter. The router matches on the raw path
// when the client escaped more than necessary, so decode it in that case.
func storedName(ctx echo.Context) string {
	name := ctx.Param("name")
	if ctx.Request().URL.RawPath == "" || !strings.Contains(name, "%") {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
