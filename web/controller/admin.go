package controller

import (
	"net/http"
	"strconv"

	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/middleware"
	"github.com/alx-polly/polly/web/service"

	"github.com/gin-gonic/gin"
)

// AdminController serves the admin dashboard, moderation and user
// management pages. Every route is behind the role gate.
type AdminController struct {
	BaseController

	pollService      service.PollService
	userService      service.UserService
	auditService     service.AuditLogService
	analyticsService service.AnalyticsService
}

func NewAdminController(g *gin.RouterGroup, analyticsService service.AnalyticsService) *AdminController {
	a := &AdminController{analyticsService: analyticsService}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	admin := g.Group("/admin", middleware.RequireAdmin())

	admin.GET("", a.index)
	admin.GET("/dashboard", a.dashboard)
	admin.GET("/moderation", a.moderation)
	admin.POST("/polls/:id/delete", a.deletePoll)
	admin.GET("/users", a.users)
	admin.POST("/users/:id/promote", a.promoteUser)
	admin.POST("/users/:id/demote", a.demoteUser)
	admin.POST("/users/:id/delete", a.deleteUser)
	admin.GET("/audit", a.audit)
	admin.GET("/logs", a.logs)
}

func (a *AdminController) admin(c *gin.Context) *model.User {
	if user, ok := c.MustGet("admin_user").(*model.User); ok {
		return user
	}
	return nil
}

func (a *AdminController) index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminController) dashboard(c *gin.Context) {
	stats, err := a.analyticsService.GetDashboardStats()
	if err != nil {
		logger.Warning("dashboard stats failed:", err)
		html(c, "admin_dashboard.html", "Dashboard", gin.H{"loadError": "Failed to load statistics"})
		return
	}
	html(c, "admin_dashboard.html", "Dashboard", gin.H{
		"stats":  stats,
		"system": a.analyticsService.GetSystemStatus(),
	})
}

func (a *AdminController) moderation(c *gin.Context) {
	polls, err := a.analyticsService.GetRecentPolls(25)
	if err != nil {
		logger.Warning("moderation list failed:", err)
		html(c, "admin_moderation.html", "Moderation", gin.H{"loadError": "Failed to load polls"})
		return
	}
	html(c, "admin_moderation.html", "Moderation", gin.H{"polls": polls})
}

func (a *AdminController) deletePoll(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/admin/moderation", service.ErrPollNotFound.Error())
		return
	}

	admin := a.admin(c)
	if err := a.pollService.DeletePoll(id, admin.Id, true); err != nil {
		redirectWithError(c, "/admin/moderation", err.Error())
		return
	}

	a.auditService.LogAction(admin.Id, admin.Name, "DELETE", "poll", id, getRemoteIp(c), nil)
	redirectWithSuccess(c, "/admin/moderation", "Poll deleted")
}

func (a *AdminController) users(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	page, limit := service.ClampPageLimit(page, 25)

	users, total, err := a.userService.GetUsers(page, limit)
	if err != nil {
		logger.Warning("user list failed:", err)
		html(c, "admin_users.html", "Users", gin.H{"loadError": "Failed to load users"})
		return
	}
	html(c, "admin_users.html", "Users", gin.H{
		"users": users,
		"total": total,
		"page":  page,
	})
}

func (a *AdminController) setRole(c *gin.Context, role, action string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/admin/users", "user not found")
		return
	}

	admin := a.admin(c)
	if id == admin.Id {
		redirectWithError(c, "/admin/users", "You cannot change your own role")
		return
	}

	if err := a.userService.SetRole(id, role); err != nil {
		redirectWithError(c, "/admin/users", err.Error())
		return
	}
	a.auditService.LogAction(admin.Id, admin.Name, action, "user", id, getRemoteIp(c), nil)
	redirectWithSuccess(c, "/admin/users", "Role updated")
}

func (a *AdminController) promoteUser(c *gin.Context) {
	a.setRole(c, model.RoleAdmin, "PROMOTE")
}

func (a *AdminController) demoteUser(c *gin.Context) {
	a.setRole(c, model.RoleUser, "DEMOTE")
}

func (a *AdminController) deleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/admin/users", "user not found")
		return
	}

	admin := a.admin(c)
	if id == admin.Id {
		redirectWithError(c, "/admin/users", "You cannot delete your own account")
		return
	}

	if err := a.userService.DeleteUser(id); err != nil {
		redirectWithError(c, "/admin/users", err.Error())
		return
	}
	a.auditService.LogAction(admin.Id, admin.Name, "DELETE", "user", id, getRemoteIp(c), nil)
	redirectWithSuccess(c, "/admin/users", "User deleted")
}

func (a *AdminController) audit(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	page, limit := service.ClampPageLimit(page, 50)

	logs, total, err := a.auditService.GetAuditLogs(0, limit, (page-1)*limit,
		c.Query("action"), c.Query("resource"))
	if err != nil {
		logger.Warning("audit list failed:", err)
		html(c, "admin_audit.html", "Audit log", gin.H{"loadError": "Failed to load audit log"})
		return
	}
	html(c, "admin_audit.html", "Audit log", gin.H{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}

func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}
	level := c.DefaultQuery("level", "INFO")
	html(c, "admin_logs.html", "Server logs", gin.H{
		"entries": logger.GetLogs(count, level),
		"level":   level,
	})
}
