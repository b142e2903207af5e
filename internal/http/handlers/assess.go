package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/data/audit"
	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/inference/advice"
	"github.com/eduymaz/aller-mind/internal/inference/engine"
	"github.com/eduymaz/aller-mind/internal/inference/environment"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/profile"
	"github.com/eduymaz/aller-mind/internal/platform/apierr"
	"github.com/eduymaz/aller-mind/internal/platform/ctxutil"
)

// AssessRequest is the classification-based request sent by the mobile
// backend: the user's allergy classification plus nested sensor sections.
type AssessRequest struct {
	UserClassification *profile.Classification `json:"userClassification"`
	EnvironmentalData  *environment.Sections   `json:"environmentalData"`
}

type assessResponse struct {
	GroupID             int                     `json:"group_id"`
	GroupName           string                  `json:"group_name"`
	RequestedGroupID    int                     `json:"requested_group_id"`
	FallbackUsed        bool                    `json:"fallback_used"`
	Prediction          *engine.GroupPrediction `json:"prediction"`
	RiskLevelLocalized  string                  `json:"risk_level_localized"`
	Ensemble            *engine.Summary         `json:"ensemble,omitempty"`
	ModelsUsed          []int                   `json:"models_used"`
	ContributingFactors advice.Factors          `json:"contributing_factors"`
	EnvironmentalRisks  advice.Risks            `json:"environmental_risks"`
	Recommendations     []string                `json:"recommendations"`
	PersonalParams      profile.Params          `json:"personal_params"`
	Locale              string                  `json:"locale"`
	Timestamp           time.Time               `json:"timestamp"`
}

// Assess handles POST /v1/predict/assess. The classification's group picks
// the expert model; when that model is not loaded the meteorological model
// answers instead. The ensemble is attached when enough models are reliable.
func (h *PredictHandler) Assess(c *gin.Context) {
	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_json", "", err))
		return
	}
	if err := validateAssess(&req); err != nil {
		response.RespondError(c, err)
		return
	}
	locale := h.engine.Locale()
	if l := strings.ToLower(strings.TrimSpace(c.Query("locale"))); l == "en" || l == "tr" {
		locale = l
	}

	ctx, cancel := withTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	params := profile.FromClassification(*req.UserClassification)
	data := req.EnvironmentalData.Flat()

	requested := req.UserClassification.GroupID
	groupID := requested
	if _, ok := h.models.Get(groupID); !ok {
		groupID = groups.Fallback
	}
	pred, err := h.engine.PredictGroup(ctx, data, groupID, &params)
	if err != nil {
		response.RespondError(c, engineError(err))
		return
	}

	out := assessResponse{
		GroupID:            groupID,
		GroupName:          groups.Name(groupID),
		RequestedGroupID:   requested,
		FallbackUsed:       groupID != requested,
		Prediction:         pred,
		RiskLevelLocalized: pred.RiskLevel.Localized(locale),
		ModelsUsed:         []int{},
		PersonalParams:     params,
		Locale:             locale,
		Timestamp:          time.Now().UTC(),
	}

	ens, err := h.engine.PredictEnsemble(ctx, data, &params)
	switch {
	case err == nil:
		out.Ensemble = &ens.Ensemble
		out.ModelsUsed = ens.ModelsUsed
	case errors.Is(err, engine.ErrNoReliableModels):
		h.log.Debug("assess without ensemble", "error", err)
	default:
		response.RespondError(c, engineError(err))
		return
	}

	reading, _ := environment.Validate(data)
	reading = environment.Engineer(reading)
	out.ContributingFactors = advice.ContributingFactors(reading, groupID)
	out.EnvironmentalRisks = advice.EnvironmentalRisks(reading)
	out.Recommendations = advice.Recommend(pred.RiskLevel, groupID, pred.PersonalSafeHours, out.ContributingFactors, locale)

	entry := audit.Entry{
		Kind:      history.KindAssess,
		GroupID:   groupID,
		SafeHours: pred.PersonalSafeHours,
		RiskScore: pred.RiskScore,
		RiskLevel: string(pred.RiskLevel),
		ClientID:  ctxutil.ClientID(ctx),
		RequestID: ctxutil.RequestID(ctx),
		Payload:   out,
	}
	if out.Ensemble != nil {
		entry.Confidence = out.Ensemble.Confidence
		entry.ModelsUsed = len(out.ModelsUsed)
	}
	h.audit.Record(ctx, entry)
	response.RespondOK(c, out)
}

func validateAssess(req *AssessRequest) error {
	var missing []string
	if req.UserClassification == nil {
		missing = append(missing, "userClassification")
	}
	if req.EnvironmentalData == nil {
		missing = append(missing, "environmentalData")
	}
	if len(missing) > 0 {
		return apierr.BadRequest("missing_fields", missing[0], fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}
	if !groups.Valid(req.UserClassification.GroupID) {
		return apierr.BadRequest("invalid_group", "userClassification.groupId",
			fmt.Errorf("%w: userClassification.groupId must be between 1 and %d", engine.ErrInvalidGroup, groups.Count))
	}
	env := req.EnvironmentalData
	sections := []struct {
		name    string
		present bool
	}{
		{"airQuality", env.AirQuality != nil},
		{"pollen", env.Pollen != nil},
		{"weather", env.Weather != nil},
	}
	for _, s := range sections {
		if !s.present {
			return apierr.BadRequest("missing_section", "environmentalData."+s.name,
				fmt.Errorf("environmentalData is missing the %s section", s.name))
		}
	}
	return nil
}
