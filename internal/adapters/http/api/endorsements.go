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

// EndorsementDependencies defines the interface for endorsement operations.
type EndorsementDependencies interface {
	EndorseSkill(ctx context.Context, args model.EndorseSkillArgs) error
	Endorsement(ctx context.Context, endorserID, talentID string, skillID uint64) (model.Endorsement, error)
}

// EndorsementsHandler handles endorsement writes and reads.
type EndorsementsHandler struct {
	deps EndorsementDependencies
}

// NewEndorsementsHandler creates a new endorsements handler.
func NewEndorsementsHandler(deps EndorsementDependencies) *EndorsementsHandler {
	return &EndorsementsHandler{deps: deps}
}

// endorseRequest mirrors the OpenAPI schema for POST /endorsements. The
// endorser is always the caller, never a body field.
type endorseRequest struct {
	TalentID string `json:"talent_id"`
	SkillID  uint64 `json:"skill_id"`
	Strength int    `json:"strength"`
	Comment  string `json:"comment"`
}

func (e endorseRequest) validate() error {
	if strings.TrimSpace(e.TalentID) == "" {
		return errors.New("missing talent_id")
	}
	return nil
}

// HandleEndorseSkill handles POST /endorsements requests.
func (h *EndorsementsHandler) HandleEndorseSkill(w http.ResponseWriter, r *http.Request) {
	const op = "api.endorse_skill"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_caller", NewKind(op, ErrMissingCaller))
		return
	}
	var req endorseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.EndorseSkill(r.Context(), model.EndorseSkillArgs{
		EndorserID: caller,
		TalentID:   req.TalentID,
		SkillID:    req.SkillID,
		Strength:   req.Strength,
		Comment:    req.Comment,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "endorsed"})
}

// HandleGetEndorsement handles GET /endorsements/{endorser}/{talent}/{skillID}
// requests.
func (h *EndorsementsHandler) HandleGetEndorsement(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_endorsement"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := pathParts(r, "/endorsements/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	skillID, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	endorsement, err := h.deps.Endorsement(r.Context(), parts[0], parts[1], skillID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, endorsement)
}
