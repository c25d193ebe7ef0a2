package api

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/service"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdatePreferencesRequest struct {
	WeightUnit domain.WeightUnit `json:"weightUnit" binding:"required,oneof=kg lbs"`
}

type UpdateProfileRequest struct {
	Name      string  `json:"name" binding:"required"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,url"`
}

type PreferencesResponse struct {
	WeightUnit domain.WeightUnit `json:"weightUnit"`
}

// GetMe godoc
// @Summary Profile of the signed-in user
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Change name and avatar of the signed-in user
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid name or avatar URL"
// @Router /me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetPreferences godoc
// @Summary Preferences of the signed-in user
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PreferencesResponse
// @Router /me/preferences [get]
func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	prefs, err := h.profileService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{WeightUnit: prefs.WeightUnit})
}

// UpdatePreferences godoc
// @Summary Change the preferred weight unit
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} PreferencesResponse
// @Failure 400 {object} gin.H "Unit must be kg or lbs"
// @Router /me/preferences [put]
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	prefs, err := h.profileService.UpdateWeightUnit(c.Request.Context(), userID, req.WeightUnit)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, PreferencesResponse{WeightUnit: prefs.WeightUnit})
}

func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidWeightUnit),
		errors.Is(err, service.ErrInvalidProfile):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Profile request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
