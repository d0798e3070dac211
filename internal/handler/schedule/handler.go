package schedule

import (
	"context"
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
	boards  *schedule.BoardStore
}

func NewHandler(service *schedule.Service, boards *schedule.BoardStore) *Handler {
	return &Handler{service: service, boards: boards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors/:id/grid", h.GetWeekGrid)

	board := r.Group("/board")
	{
		board.GET("", h.GetBoard)
		board.PUT("/context", h.SetBoardContext)
		board.POST("/refresh", h.RefreshBoard)
		board.POST("/click", h.Click)
		board.DELETE("/selection", h.ClearSelection)
		board.DELETE("", h.CloseBoard)
	}
}

// GetWeekGrid renders one week statelessly. Patients may pass a selected
// cell to have it marked.
func (h *Handler) GetWeekGrid(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}

	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || doctorID <= 0 {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.GridQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	loc := h.service.Location()
	week, err := model.ParseDate(req.Week, loc, h.service.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	query := schedule.GridQuery{DoctorID: doctorID, Week: week, Selection: slotgrid.NoSelection}
	hasSelection, err := req.HasSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}
	if hasSelection {
		cell, err := model.ParseCell(req.SelectedDate, req.SelectedTime, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
			return
		}
		query.Selection = slotgrid.Select(cell)
	}

	grid, err := h.service.WeekGrid(c.Request.Context(), session, query)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, grid)
}

// SetBoardContext points the viewer's board at a doctor and week and starts
// loading it. The response does not wait for the load.
func (h *Handler) SetBoardContext(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}

	var req model.BoardContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	week, err := model.ParseDate(req.Week, h.service.Location(), h.service.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	board := h.boards.Get(session)
	if err := board.SetContext(req.DoctorID, week); err != nil {
		h.respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, httputil.NewSuccessResponse(gin.H{
		"doctor_id":  req.DoctorID,
		"week_start": slotgrid.MondayOf(week, h.service.Location()).Format(model.DateLayout),
		"generation": board.Generation(),
		"loading":    true,
	}))
}

// GetBoard returns the viewer's board. With wait=true it blocks until the
// current load settles or the request deadline passes.
func (h *Handler) GetBoard(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	board := h.boards.Get(session)

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		if err := board.Wait(c.Request.Context()); err != nil && !isDeadline(err) {
			httputil.RespondWithError(c, err)
			return
		}
	}

	view, err := board.View(h.service.Now())
	if err != nil {
		h.respondBoardError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) RefreshBoard(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	board := h.boards.Get(session)
	if board.DoctorID() == 0 {
		h.respondBoardError(c, schedule.ErrNoContext)
		return
	}

	board.Refresh()
	c.JSON(http.StatusAccepted, httputil.NewSuccessResponse(gin.H{
		"generation": board.Generation(),
		"loading":    true,
	}))
}

// Click applies a click on one cell of the board.
func (h *Handler) Click(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}

	var req model.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}
	cell, err := model.ParseCell(req.Date, req.Time, h.service.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.boards.Get(session).Click(cell, h.service.Now())
	if err != nil {
		h.respondBoardError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ClearSelection(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	h.boards.Get(session).ClearSelection()
	c.Status(http.StatusNoContent)
}

// CloseBoard drops the viewer's board and cancels its load.
func (h *Handler) CloseBoard(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	h.boards.Delete(session.Subject)
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schedule.ErrBoardLoading):
		c.JSON(http.StatusAccepted, &httputil.Response{
			Status:  "success",
			Message: err.Error(),
			Data:    gin.H{"loading": true},
		})
	case errors.Is(err, schedule.ErrNoContext):
		httputil.RespondWithError(c, apperrors.Conflict("no doctor selected; set the board context first", err))
	default:
		httputil.RespondWithError(c, err)
	}
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
