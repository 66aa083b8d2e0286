package controller

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/alx-polly/polly/config"
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/entity"
	"github.com/alx-polly/polly/web/session"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or
// remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warning(msg+" failed: ", err)
	}
	c.JSON(http.StatusOK, m)
}

// html renders an HTML template with the provided data and title. Flash
// messages carried in the query string are passed through to the template
// and dropped from the canonical URL by the page itself.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["cur_ver"] = config.GetVersion()
	data["user"] = session.GetLoginUser(c)
	data["flash_error"] = c.Query("error")
	data["flash_success"] = c.Query("success")
	if c.Query("toast") != "" {
		data["flash_toast"] = c.Query("toast")
		data["flash_message"] = c.Query("message")
	}
	c.HTML(http.StatusOK, name, data)
}

func appendQuery(path, query string) string {
	if strings.Contains(path, "?") {
		return path + "&" + query
	}
	return path + "?" + query
}

// redirectWithError sends the browser back to path with a one-time error
// message in the query string.
func redirectWithError(c *gin.Context, path, msg string) {
	c.Redirect(http.StatusFound, appendQuery(path, "error="+url.QueryEscape(msg)))
}

// redirectWithSuccess is the success-side flash redirect.
func redirectWithSuccess(c *gin.Context, path, msg string) {
	c.Redirect(http.StatusFound, appendQuery(path, "success="+url.QueryEscape(msg)))
}

// redirectWithToast carries a typed toast plus message, the alternate flash
// form used by the voting UI.
func redirectWithToast(c *gin.Context, path, toast, msg string) {
	c.Redirect(http.StatusFound, appendQuery(path, "toast="+url.QueryEscape(toast)+"&message="+url.QueryEscape(msg)))
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
