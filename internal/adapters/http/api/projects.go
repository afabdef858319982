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

// ProjectDependencies defines the interface for project operations.
type ProjectDependencies interface {
	AddProject(ctx context.Context, args model.AddProjectArgs) error
	VerifyProject(ctx context.Context, args model.VerifyProjectArgs) error
	Project(ctx context.Context, talentID string, projectID uint64) (model.Project, error)
}

// ProjectsHandler handles project records and third-party verification.
type ProjectsHandler struct {
	deps ProjectDependencies
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps ProjectDependencies) *ProjectsHandler {
	return &ProjectsHandler{deps: deps}
}

// addProjectRequest mirrors the OpenAPI schema for POST /projects.
type addProjectRequest struct {
	ProjectID      uint64 `json:"project_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DurationMonths int    `json:"duration_months"`
	Completed      bool   `json:"completed"`
	Rating         int    `json:"rating"`
}

func (p addProjectRequest) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// verifyRequest mirrors the OpenAPI schema for POST /verifications. The
// verifier is always the caller.
type verifyRequest struct {
	TalentID  string `json:"talent_id"`
	ProjectID uint64 `json:"project_id"`
}

func (v verifyRequest) validate() error {
	if strings.TrimSpace(v.TalentID) == "" {
		return errors.New("missing talent_id")
	}
	return nil
}

// HandleAddProject handles POST /projects requests. Projects are always
// recorded on the caller's own history.
func (h *ProjectsHandler) HandleAddProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_project"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_caller", NewKind(op, ErrMissingCaller))
		return
	}
	var req addProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.AddProject(r.Context(), model.AddProjectArgs{
		TalentID:       caller,
		ProjectID:      req.ProjectID,
		Name:           req.Name,
		Role:           req.Role,
		DurationMonths: req.DurationMonths,
		Completed:      req.Completed,
		Rating:         req.Rating,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// HandleVerifyProject handles POST /verifications requests.
func (h *ProjectsHandler) HandleVerifyProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_project"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_caller", NewKind(op, ErrMissingCaller))
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	err := h.deps.VerifyProject(r.Context(), model.VerifyProjectArgs{
		VerifierID: caller,
		TalentID:   req.TalentID,
		ProjectID:  req.ProjectID,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "verified"})
}

// HandleGetProject handles GET /projects/{talent}/{projectID} requests.
func (h *ProjectsHandler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_project"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := pathParts(r, "/projects/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	projectID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	project, err := h.deps.Project(r.Context(), parts[0], projectID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
