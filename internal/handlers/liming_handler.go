package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/terralytics/limeplan/internal/errors"
	"github.com/terralytics/limeplan/internal/middleware"
	"github.com/terralytics/limeplan/internal/models"
	"github.com/terralytics/limeplan/internal/services"
)

// LimingHandler handles lime prescription HTTP requests.
type LimingHandler struct {
	prescriptions services.PrescriptionService
	history       services.HistoryService
}

// NewLimingHandler creates a new LimingHandler instance.
func NewLimingHandler(prescriptions services.PrescriptionService, history services.HistoryService) *LimingHandler {
	return &LimingHandler{
		prescriptions: prescriptions,
		history:       history,
	}
}

// VDLUFAParametersDTO carries the request parameters for the empirical
// method. All fields are optional; the service applies defaults.
type VDLUFAParametersDTO struct {
	CropCategory       string   `json:"crop_category,omitempty"`
	LimeType           string   `json:"lime_type,omitempty"`
	LimingMode         string   `json:"liming_mode,omitempty"`
	DefaultSoilTexture string   `json:"default_soil_texture,omitempty"`
	MaxApplicationRate *float64 `json:"max_application_rate,omitempty"`
}

// CECParametersDTO carries the request parameters for the CEC method.
type CECParametersDTO struct {
	TargetPh           float64  `json:"target_ph,omitempty"`
	FineDrySoil        float64  `json:"fine_dry_soil,omitempty"`
	NV                 float64  `json:"nv" binding:"required,gt=0"`
	Dose               float64  `json:"dose,omitempty"`
	CECOverride        *float64 `json:"cec_override,omitempty"`
	SCecPercentage     *float64 `json:"s_cec_percentage,omitempty"`
	ModifiedSCec       *float64 `json:"modified_s_cec,omitempty"`
	LimingMode         string   `json:"liming_mode,omitempty"`
	DefaultSoilTexture string   `json:"default_soil_texture,omitempty"`
	MaxApplicationRate *float64 `json:"max_application_rate,omitempty"`
}

// VDLUFACalculateRequest is the body of the VDLUFA calculation endpoint.
type VDLUFACalculateRequest struct {
	Samples    []models.SoilSample `json:"samples" binding:"required,min=1"`
	Parameters VDLUFAParametersDTO `json:"parameters"`
}

// CECCalculateRequest is the body of the CEC calculation endpoint.
type CECCalculateRequest struct {
	Samples    []models.SoilSample `json:"samples" binding:"required,min=1"`
	Parameters CECParametersDTO    `json:"parameters" binding:"required"`
}

// CalculateResponse is the shared response shape of both calculation
// endpoints.
type CalculateResponse struct {
	Results []models.PrescriptionResult `json:"results"`
	Summary models.PrescriptionSummary  `json:"summary"`
}

// CalculateVDLUFA handles POST /api/v1/liming/calculate/vdlufa.
func (h *LimingHandler) CalculateVDLUFA(c *gin.Context) {
	var req VDLUFACalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	params := models.VDLUFAParameters{
		CropCategory:       models.CropCategory(req.Parameters.CropCategory),
		LimeProduct:        req.Parameters.LimeType,
		Mode:               models.LimingMode(req.Parameters.LimingMode),
		DefaultTexture:     req.Parameters.DefaultSoilTexture,
		MaxApplicationRate: req.Parameters.MaxApplicationRate,
	}

	results, summary, err := h.prescriptions.CalculateVDLUFA(c.Request.Context(), req.Samples, params)
	if err != nil {
		if errors.Is(err, services.ErrInvalidParameters) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Calculation failed", err)
		return
	}

	h.history.RecordCalculation(c.Request.Context(), summary, req.Parameters)

	if log := middleware.GetLogger(c); log != nil {
		log.Info("VDLUFA calculation completed", map[string]interface{}{
			"samples":        summary.TotalSamples,
			"capped_samples": summary.CappedSamples,
		})
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Results: results,
		Summary: summary,
	})
}

// CalculateCEC handles POST /api/v1/liming/calculate/cec.
func (h *LimingHandler) CalculateCEC(c *gin.Context) {
	var req CECCalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	params := models.CECParameters{
		TargetPh:           req.Parameters.TargetPh,
		FineDrySoil:        req.Parameters.FineDrySoil,
		NV:                 req.Parameters.NV,
		Dose:               req.Parameters.Dose,
		CECOverride:        req.Parameters.CECOverride,
		SCecPercentage:     req.Parameters.SCecPercentage,
		ModifiedSCec:       req.Parameters.ModifiedSCec,
		Mode:               models.LimingMode(req.Parameters.LimingMode),
		DefaultTexture:     req.Parameters.DefaultSoilTexture,
		MaxApplicationRate: req.Parameters.MaxApplicationRate,
	}

	results, summary, err := h.prescriptions.CalculateCEC(c.Request.Context(), req.Samples, params)
	if err != nil {
		if errors.Is(err, services.ErrInvalidParameters) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Calculation failed", err)
		return
	}

	h.history.RecordCalculation(c.Request.Context(), summary, req.Parameters)

	if log := middleware.GetLogger(c); log != nil {
		log.Info("CEC calculation completed", map[string]interface{}{
			"samples":        summary.TotalSamples,
			"capped_samples": summary.CappedSamples,
		})
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Results: results,
		Summary: summary,
	})
}

// MethodInfo describes one calculation method for the discovery
// endpoint.
type MethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Methods handles GET /api/v1/liming/methods.
func (h *LimingHandler) Methods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"methods": []MethodInfo{
			{
				ID:          string(models.MethodVDLUFA),
				Name:        "VDLUFA empirical method",
				Description: "Piecewise dose curves per soil texture class and crop category",
			},
			{
				ID:          string(models.MethodCEC),
				Name:        "Cation exchange capacity method",
				Description: "Linear dose from CEC, fine dry soil mass and neutralizing value",
			},
		},
	})
}

// LimeTypes handles GET /api/v1/liming/lime-types.
func (h *LimingHandler) LimeTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lime_types": models.LimeProducts(),
	})
}

// History handles GET /api/v1/liming/history.
func (h *LimingHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			apierrors.BadRequest(c, "limit must be an integer between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	records, err := h.history.RecentCalculations(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "calculation history is disabled",
			})
			return
		}
		apierrors.InternalServerError(c, "Failed to load calculation history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": records,
	})
}
