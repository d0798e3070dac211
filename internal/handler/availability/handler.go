package availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/schedule"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors/:id")
	{
		doctors.GET("/availability", h.GetAvailability)
		doctors.PUT("/availability", middleware.RequireRole(slotgrid.RoleAdmin), h.ReplaceAvailability)
		doctors.GET("/agenda", h.GetAgenda)
	}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, ok := doctorParam(c)
	if !ok {
		return
	}

	rules, err := h.service.Availability(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if rules == nil {
		rules = []slotgrid.WeeklyAvailabilityRule{}
	}
	httputil.RespondWithSuccess(c, rules)
}

// ReplaceAvailability swaps the doctor's whole weekly rule set.
func (h *Handler) ReplaceAvailability(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	doctorID, ok := doctorParam(c)
	if !ok {
		return
	}

	var req []model.AvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	rules, err := model.ToRules(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ReplaceAvailability(c.Request.Context(), session, doctorID, rules); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rules)
}

// GetAgenda lists the doctor's bookings between two dates, both inclusive.
func (h *Handler) GetAgenda(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	doctorID, ok := doctorParam(c)
	if !ok {
		return
	}

	var req model.AgendaQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	loc, now := h.service.Location(), h.service.Now()
	from, err := model.ParseDate(req.From, loc, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}
	to, err := model.ParseDate(req.To, loc, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	appts, err := h.service.Agenda(c.Request.Context(), session, doctorID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if appts == nil {
		appts = []slotgrid.Appointment{}
	}
	httputil.RespondWithSuccess(c, appts)
}

func doctorParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid doctor ID"))
		return 0, false
	}
	return id, true
}
