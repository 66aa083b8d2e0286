package controller

import (
	"net/http"

	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/middleware"
	"github.com/alx-polly/polly/web/service"
	"github.com/alx-polly/polly/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterForm represents the registration request structure.
type RegisterForm struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// ResetForm carries both phases of the password reset flow: a bare email
// requests a token, a token plus passwords completes the reset.
type ResetForm struct {
	Email           string `json:"email" form:"email"`
	Token           string `json:"token" form:"token"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// AuthController handles login, registration, logout, password reset and
// email verification.
type AuthController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
}

func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	auth := g.Group("/auth")

	// Logged-in users have no business on the auth pages.
	pages := auth.Group("", middleware.RedirectAuthenticated())
	pages.GET("/login", a.loginPage)
	pages.POST("/login", a.login)
	pages.GET("/register", a.registerPage)
	pages.POST("/register", a.register)
	pages.GET("/reset-password", a.resetPage)
	pages.POST("/reset-password", a.reset)

	auth.GET("/verify-email", a.verifyEmail)
	auth.GET("/logout", a.logout)
}

func (a *AuthController) loginPage(c *gin.Context) {
	html(c, "login.html", "Sign in", nil)
}

func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/auth/login", "Invalid form data")
		return
	}
	if form.Email == "" || form.Password == "" {
		redirectWithError(c, "/auth/login", "Email and password are required")
		return
	}

	user, err := a.userService.Login(form.Email, form.Password)
	if err != nil {
		logger.Warningf("failed login for %q from %s", form.Email, getRemoteIp(c))
		redirectWithError(c, "/auth/login", service.AuthErrorMessage(err))
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}

	if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
		logger.Warning("Unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("Unable to save session:", err)
		redirectWithError(c, "/auth/login", "An unexpected error occurred")
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", user.Email, getRemoteIp(c))
	redirectWithToast(c, "/polls", "success", "Successfully signed in")
}

func (a *AuthController) registerPage(c *gin.Context) {
	html(c, "register.html", "Create account", nil)
}

func (a *AuthController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/auth/register", "Invalid form data")
		return
	}

	user, err := a.userService.Register(form.Name, form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		redirectWithError(c, "/auth/register", service.AuthErrorMessage(err))
		return
	}

	logger.Infof("new account registered: %s", user.Email)
	redirectWithSuccess(c, "/auth/login",
		"Account created successfully. Please check your email to verify your account.")
}

func (a *AuthController) resetPage(c *gin.Context) {
	html(c, "reset_password.html", "Reset password", gin.H{
		"token": c.Query("token"),
	})
}

func (a *AuthController) reset(c *gin.Context) {
	var form ResetForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/auth/reset-password", "Invalid form data")
		return
	}

	if form.Token == "" {
		if _, err := a.userService.BeginPasswordReset(form.Email); err != nil {
			redirectWithError(c, "/auth/reset-password", service.AuthErrorMessage(err))
			return
		}
		redirectWithSuccess(c, "/auth/login", "Password reset email sent. Please check your email.")
		return
	}

	if err := a.userService.CompletePasswordReset(form.Token, form.Password, form.ConfirmPassword); err != nil {
		redirectWithError(c, "/auth/reset-password?token="+form.Token, service.AuthErrorMessage(err))
		return
	}
	redirectWithSuccess(c, "/auth/login", "Your password has been updated. Please sign in.")
}

func (a *AuthController) verifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		redirectWithError(c, "/auth/login", "Verification token is missing")
		return
	}
	if err := a.userService.VerifyEmail(token); err != nil {
		redirectWithError(c, "/auth/login", service.AuthErrorMessage(err))
		return
	}
	redirectWithSuccess(c, "/auth/login", "Email verified. You can sign in now.")
}

func (a *AuthController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out successfully", user.Email)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.Redirect(http.StatusFound, "/auth/login")
}
