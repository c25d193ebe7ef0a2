package api

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/service"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SupplementHandler struct {
	supplementService service.SupplementService
}

func NewSupplementHandler(supplementService service.SupplementService) *SupplementHandler {
	return &SupplementHandler{supplementService: supplementService}
}

type AddSupplementRequest struct {
	Name string `json:"name" binding:"required"`
}

type SupplementResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type SupplementLogResponse struct {
	SupplementID string `json:"supplementId"`
	Date         string `json:"date"`
	Taken        bool   `json:"taken"`
}

type ChecklistItemResponse struct {
	SupplementResponse
	Taken bool `json:"taken"`
}

type ChecklistResponse struct {
	Date  string                  `json:"date"`
	Items []ChecklistItemResponse `json:"items"`
}

func MapSupplementToResponse(s *domain.Supplement) SupplementResponse {
	return SupplementResponse{ID: s.ID.Hex(), Name: s.Name, Order: s.Order}
}

// queryDate returns the "date" query parameter, today in UTC when absent.
func queryDate(c *gin.Context) string {
	if date := c.Query("date"); date != "" {
		return date
	}
	return time.Now().UTC().Format(domain.DateLayout)
}

// ListSupplements godoc
// @Summary The user's supplements in checklist order
// @Tags Supplements
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SupplementResponse
// @Router /supplements [get]
func (h *SupplementHandler) ListSupplements(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	supplements, err := h.supplementService.List(c.Request.Context(), userID)
	if err != nil {
		h.handleSupplementError(c, err)
		return
	}
	out := make([]SupplementResponse, len(supplements))
	for i := range supplements {
		out[i] = MapSupplementToResponse(&supplements[i])
	}
	c.JSON(http.StatusOK, out)
}

// AddSupplement godoc
// @Summary Add a supplement at the end of the checklist
// @Tags Supplements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddSupplementRequest true "Supplement"
// @Success 201 {object} SupplementResponse
// @Router /supplements [post]
func (h *SupplementHandler) AddSupplement(c *gin.Context) {
	var req AddSupplementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	s, err := h.supplementService.Add(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.handleSupplementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSupplementToResponse(s))
}

// RemoveSupplement godoc
// @Summary Remove a supplement and its logs
// @Tags Supplements
// @Security BearerAuth
// @Param id path string true "Supplement ID"
// @Success 204
// @Router /supplements/{id} [delete]
func (h *SupplementHandler) RemoveSupplement(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	supplementID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.supplementService.Remove(c.Request.Context(), userID, supplementID); err != nil {
		h.handleSupplementError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogsForDate godoc
// @Summary Supplement logs of one day
// @Tags Supplements
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD), today by default"
// @Success 200 {array} SupplementLogResponse
// @Router /supplements/logs [get]
func (h *SupplementHandler) LogsForDate(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logs, err := h.supplementService.LogsForDate(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleSupplementError(c, err)
		return
	}
	out := make([]SupplementLogResponse, len(logs))
	for i, l := range logs {
		out[i] = SupplementLogResponse{SupplementID: l.SupplementID.Hex(), Date: l.Date, Taken: l.Taken}
	}
	c.JSON(http.StatusOK, out)
}

// Checklist godoc
// @Summary Supplements with their taken state for one day
// @Tags Supplements
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD), today by default"
// @Success 200 {object} ChecklistResponse
// @Router /supplements/checklist [get]
func (h *SupplementHandler) Checklist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	list, err := h.supplementService.Checklist(c.Request.Context(), userID, queryDate(c))
	if err != nil {
		h.handleSupplementError(c, err)
		return
	}
	resp := ChecklistResponse{Date: list.Date, Items: make([]ChecklistItemResponse, len(list.Items))}
	for i := range list.Items {
		resp.Items[i] = ChecklistItemResponse{
			SupplementResponse: MapSupplementToResponse(&list.Items[i].Supplement),
			Taken:              list.Items[i].Taken,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleSupplement godoc
// @Summary Flip the taken state of a supplement for a day
// @Tags Supplements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplement ID"
// @Param date query string false "Day (YYYY-MM-DD), today by default"
// @Success 200 {object} SupplementLogResponse
// @Router /supplements/{id}/toggle [post]
func (h *SupplementHandler) ToggleSupplement(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	supplementID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	date := queryDate(c)
	taken, err := h.supplementService.Toggle(c.Request.Context(), userID, supplementID, date)
	if err != nil {
		h.handleSupplementError(c, err)
		return
	}
	c.JSON(http.StatusOK, SupplementLogResponse{SupplementID: supplementID.Hex(), Date: date, Taken: taken})
}

func (h *SupplementHandler) handleSupplementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSupplementNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSupplementName), errors.Is(err, service.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Supplement request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
