// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vouch/internal/domain/model"
)

// TalentDependencies defines the interface for talent operations.
type TalentDependencies interface {
	RegisterTalent(ctx context.Context, args model.RegisterTalentArgs) error
	Talent(ctx context.Context, talentID string) (model.TalentProfile, error)
}

// TalentsHandler handles talent registration and profile reads.
type TalentsHandler struct {
	deps TalentDependencies
}

// NewTalentsHandler creates a new talents handler.
func NewTalentsHandler(deps TalentDependencies) *TalentsHandler {
	return &TalentsHandler{deps: deps}
}

// registerRequest mirrors the OpenAPI schema for POST /talents.
type registerRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

func (t registerRequest) validate() error {
	if strings.TrimSpace(t.Username) == "" {
		return errors.New("missing username")
	}
	return nil
}

// HandleCreateTalent handles POST /talents requests. The caller registers
// itself; the profile identity comes from the identity header.
func (h *TalentsHandler) HandleCreateTalent(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_talent"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_caller", NewKind(op, ErrMissingCaller))
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.RegisterTalent(r.Context(), model.RegisterTalentArgs{
		TalentID: caller,
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "registered"})
}

// HandleGetTalent handles GET /talents/{id} requests.
func (h *TalentsHandler) HandleGetTalent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_talent"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/talents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	profile, err := h.deps.Talent(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
