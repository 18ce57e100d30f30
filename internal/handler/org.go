package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/orgvault/internal/domain"
	"github.com/yourorg/orgvault/internal/security/middleware"
	"github.com/yourorg/orgvault/internal/service"
)

// CreateOrgRequest is the signup payload.
type CreateOrgRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// UpdateOrgRequest carries the optional changes to an organization. Empty
// fields are left unchanged.
type UpdateOrgRequest struct {
	OrganizationName    string `json:"organization_name"`
	Email               string `json:"email,omitempty"`
	Password            string `json:"password,omitempty"`
	NewOrganizationName string `json:"new_organization_name,omitempty"`
}

// OrgResponse is the external view of an organization. The admin's password
// hash and internal ids stay out of it.
type OrgResponse struct {
	OrganizationName string    `json:"organization_name"`
	CollectionName   string    `json:"collection_name"`
	AdminEmail       string    `json:"admin_email"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// OrgHandler serves the organization lifecycle endpoints.
type OrgHandler struct {
	orgService *service.OrgService
	logger     *slog.Logger
}

// NewOrgHandler creates a new organization handler
func NewOrgHandler(orgService *service.OrgService, logger *slog.Logger) *OrgHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgHandler{orgService: orgService, logger: logger}
}

// Create handles POST /api/org
func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrganizationName == "" || req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "organization_name, email, and password are required")
		return
	}

	tenant, err := h.orgService.Create(r.Context(), req.OrganizationName, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orgResponse(tenant))
}

// Get handles GET /api/org?organization_name=
func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("organization_name")
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "organization_name is required")
		return
	}

	tenant, err := h.orgService.Get(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgResponse(tenant))
}

// Update handles PUT /api/org
func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrganizationName == "" {
		writeJSONError(w, http.StatusBadRequest, "organization_name is required")
		return
	}

	tenant, err := h.orgService.Update(r.Context(), identity, req.OrganizationName, req.Email, req.Password, req.NewOrganizationName)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgResponse(tenant))
}

// Delete handles DELETE /api/org?organization_name=
func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	name := r.URL.Query().Get("organization_name")
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "organization_name is required")
		return
	}

	if err := h.orgService.Delete(r.Context(), identity, name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "organization '" + name + "' deleted"})
}

func (h *OrgHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("organization operation failed",
			slog.String("path", r.URL.Path),
			slog.String("method", r.Method),
			slog.String("error", err.Error()),
		)
		// Internal details stay out of the response.
		writeJSONError(w, status, "internal error")
		return
	}
	writeJSONError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentialFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTenantAlreadyExists), errors.Is(err, domain.ErrEmailAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func orgResponse(t *domain.Tenant) OrgResponse {
	return OrgResponse{
		OrganizationName: t.Name,
		CollectionName:   t.PartitionID,
		AdminEmail:       t.AdminEmail,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
