// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/vouch/internal/domain/model"
)

// SkillDependencies defines the interface for skill operations.
type SkillDependencies interface {
	AddSkill(ctx context.Context, args model.AddSkillArgs) error
	Skill(ctx context.Context, talentID string, skillID uint64) (model.Skill, error)
}

// SkillsHandler handles skill claims and reads.
type SkillsHandler struct {
	deps SkillDependencies
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillDependencies) *SkillsHandler {
	return &SkillsHandler{deps: deps}
}

// addSkillRequest mirrors the OpenAPI schema for POST /skills.
type addSkillRequest struct {
	SkillID          uint64 `json:"skill_id"`
	Name             string `json:"name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience"`
}

func (s addSkillRequest) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// HandleAddSkill handles POST /skills requests. Skills are always claimed
// on the caller's own profile.
func (h *SkillsHandler) HandleAddSkill(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_skill"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_caller", NewKind(op, ErrMissingCaller))
		return
	}
	var req addSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.AddSkill(r.Context(), model.AddSkillArgs{
		TalentID:         caller,
		SkillID:          req.SkillID,
		Name:             req.Name,
		ProficiencyLevel: req.ProficiencyLevel,
		YearsExperience:  req.YearsExperience,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "added"})
}

// HandleGetSkill handles GET /skills/{talent}/{skillID} requests.
func (h *SkillsHandler) HandleGetSkill(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_skill"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := pathParts(r, "/skills/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	skillID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	skill, err := h.deps.Skill(r.Context(), parts[0], skillID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, skill)
}
