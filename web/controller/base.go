// Package controller provides the HTTP request handlers for the polly web
// application: public poll pages, auth flows, and the admin area.
package controller

import (
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers. Route
// gating lives in web/middleware; controllers only read the session.
type BaseController struct{}

// currentUser returns the session principal, or nil for anonymous callers.
func (a *BaseController) currentUser(c *gin.Context) *model.User {
	return session.GetLoginUser(c)
}
