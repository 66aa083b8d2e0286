package middleware

import (
	"net/http"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/session"

	"github.com/gin-gonic/gin"
)

// RequireLogin redirects anonymous users to the login page. AJAX requests
// get a 401 instead of a redirect.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.IsLogin(c) {
			c.Next()
			return
		}
		if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Please log in to continue"})
		} else {
			c.Redirect(http.StatusFound, "/auth/login")
		}
		c.Abort()
	}
}

// RedirectAuthenticated sends logged-in users away from the auth pages.
func RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.IsLogin(c) {
			c.Redirect(http.StatusFound, "/polls")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates the admin area. The role is re-read from the users
// table rather than trusted from the session, so a demotion takes effect on
// the next request.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.GetLoginUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}

		current := &model.User{}
		err := database.GetDB().Where("id = ?", user.Id).First(current).Error
		if err != nil || !current.IsAdmin() {
			if err != nil && !database.IsNotFound(err) {
				logger.Warning("admin gate role lookup failed:", err)
			}
			c.Redirect(http.StatusFound, "/polls")
			c.Abort()
			return
		}

		c.Set("admin_user", current)
		c.Next()
	}
}
