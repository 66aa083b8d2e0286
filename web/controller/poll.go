package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/entity"
	"github.com/alx-polly/polly/web/middleware"
	"github.com/alx-polly/polly/web/service"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// CreatePollForm is the poll creation request.
type CreatePollForm struct {
	Question string   `json:"question" form:"question"`
	Options  []string `json:"options" form:"options"`
	IsPublic bool     `json:"isPublic" form:"isPublic"`
	EndDate  string   `json:"endDate" form:"endDate"` // YYYY-MM-DD, optional
}

// VoteForm is the vote submission request.
type VoteForm struct {
	OptionId int `json:"optionId" form:"optionId"`
}

// PollController handles poll browsing, creation, voting and deletion.
type PollController struct {
	BaseController

	pollService    service.PollService
	voteService    service.VoteService
	settingService service.SettingService
	auditService   service.AuditLogService
}

func NewPollController(g *gin.RouterGroup) *PollController {
	a := &PollController{}
	a.initRouter(g)
	return a
}

func (a *PollController) initRouter(g *gin.RouterGroup) {
	polls := g.Group("/polls")

	polls.GET("", a.browse)
	polls.GET("/create", middleware.RequireLogin(), a.createPage)
	polls.POST("/create", middleware.RequireLogin(), a.create)
	polls.GET("/:id", a.detail)
	polls.GET("/:id/qr", a.shareQR)
	polls.POST("/:id/vote", middleware.RequireLogin(), a.vote)
	polls.POST("/:id/delete", middleware.RequireLogin(), a.delete)
}

func (a *PollController) pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit, err = a.settingService.GetPageSize()
		if err != nil {
			limit = 10
		}
	}
	return service.ClampPageLimit(page, limit)
}

func (a *PollController) browse(c *gin.Context) {
	page, limit := a.pageParams(c)
	user := a.currentUser(c)

	mine := c.Query("mine") == "1" && user != nil

	var items []service.PollListItem
	var total int64
	var err error
	data := gin.H{}

	if mine {
		items, total, err = a.pollService.GetUserPolls(user.Id, page, limit)
		data["mine"] = true
	} else {
		items, total, err = a.pollService.GetPolls(page, limit, true)
	}
	data["polls"] = items
	if err != nil {
		logger.Warning("list polls failed:", err)
		html(c, "polls.html", "Polls", gin.H{"loadError": "Failed to fetch polls"})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	data["pagination"] = entity.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
	html(c, "polls.html", "Polls", data)
}

func (a *PollController) detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/polls", service.ErrPollNotFound.Error())
		return
	}

	poll, err := a.pollService.GetPoll(id)
	if err != nil {
		redirectWithError(c, "/polls", err.Error())
		return
	}

	user := a.currentUser(c)
	if !poll.IsPublic && (user == nil || (user.Id != poll.CreatedBy && !user.IsAdmin())) {
		// Private polls are indistinguishable from missing ones.
		redirectWithError(c, "/polls", service.ErrPollNotFound.Error())
		return
	}

	data := gin.H{"poll": poll}
	if user != nil {
		vote, err := a.voteService.GetUserVote(poll.Id, user.Id)
		if err != nil {
			logger.Warning("get user vote failed:", err)
		} else if vote != nil {
			data["myVote"] = vote
		}
		data["canDelete"] = user.Id == poll.CreatedBy || user.IsAdmin()
	}
	html(c, "poll.html", poll.Question, data)
}

func (a *PollController) createPage(c *gin.Context) {
	html(c, "poll_create.html", "Create poll", nil)
}

func (a *PollController) create(c *gin.Context) {
	var form CreatePollForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/polls/create", "Invalid form data")
		return
	}

	var endDate *time.Time
	if form.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", form.EndDate)
		if err != nil {
			redirectWithError(c, "/polls/create", "End date must be a valid date")
			return
		}
		endDate = &parsed
	}

	user := a.currentUser(c)
	poll, err := a.pollService.CreatePoll(user.Id, form.Question, form.Options, form.IsPublic, endDate)
	if err != nil {
		redirectWithError(c, "/polls/create", err.Error())
		return
	}

	logger.Infof("poll %d created by user %d", poll.Id, user.Id)
	redirectWithSuccess(c, fmt.Sprintf("/polls/%d", poll.Id), "Poll created")
}

func (a *PollController) vote(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/polls", service.ErrPollNotFound.Error())
		return
	}

	var form VoteForm
	if err := c.ShouldBind(&form); err != nil || form.OptionId == 0 {
		redirectWithError(c, fmt.Sprintf("/polls/%d", id), "Please choose an option")
		return
	}

	user := a.currentUser(c)
	if err := a.voteService.Vote(id, form.OptionId, user.Id); err != nil {
		redirectWithError(c, fmt.Sprintf("/polls/%d", id), err.Error())
		return
	}

	if isAjax(c) {
		jsonMsg(c, "Vote recorded", nil)
		return
	}
	redirectWithToast(c, fmt.Sprintf("/polls/%d", id), "success", "Vote recorded")
}

func (a *PollController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		redirectWithError(c, "/polls", service.ErrPollNotFound.Error())
		return
	}

	user := a.currentUser(c)
	if err := a.pollService.DeletePoll(id, user.Id, user.IsAdmin()); err != nil {
		redirectWithError(c, fmt.Sprintf("/polls/%d", id), err.Error())
		return
	}

	if user.IsAdmin() {
		a.auditService.LogAction(user.Id, user.Name, "DELETE", "poll", id, getRemoteIp(c), nil)
	}
	redirectWithSuccess(c, "/polls", "Poll deleted")
}

// shareQR renders a QR code pointing at the poll's detail page.
func (a *PollController) shareQR(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if _, err := a.pollService.GetPoll(id); err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	pollURL := fmt.Sprintf("%s://%s/polls/%d", scheme, c.Request.Host, id)

	png, err := qrcode.Encode(pollURL, qrcode.Medium, 256)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
