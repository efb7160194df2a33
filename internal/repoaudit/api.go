package repoaudit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sha1n/a11y-audit/internal/domain"
)

// APIPath is the mount point of the audit API.
const APIPath = "/api/audit"

// maxRequestBytes bounds the audit request body.
const maxRequestBytes = 1 << 20

// RepositoryAuditor audits a repository by URL.
type RepositoryAuditor interface {
	Audit(ctx context.Context, rawURL string) (*Outcome, error)
}

// AuditRequest is the body of an audit API request.
type AuditRequest struct {
	RepoURL string `json:"repoUrl"`
}

// AuditResponse is the body of an audit API response.
type AuditResponse struct {
	Success bool                 `json:"success"`
	Results []domain.AuditResult `json:"results,omitempty"`
	RunID   string               `json:"runId,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// NewAPIHandler returns the HTTP handler for POST /api/audit.
func NewAPIHandler(auditor RepositoryAuditor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, AuditResponse{Error: "Method not allowed"})
			return
		}

		var req AuditRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, AuditResponse{Error: "Invalid request body"})
			return
		}

		if strings.TrimSpace(req.RepoURL) == "" {
			writeJSON(w, http.StatusBadRequest, AuditResponse{Error: "Repository URL is required"})
			return
		}

		outcome, err := auditor.Audit(r.Context(), req.RepoURL)
		if err != nil {
			status, msg := statusFor(err)
			writeJSON(w, status, AuditResponse{Error: msg})
			return
		}

		writeJSON(w, http.StatusOK, AuditResponse{
			Success: true,
			Results: outcome.Run.Results,
			RunID:   outcome.RunID,
		})
	})
}

func statusFor(err error) (int, string) {
	switch Classify(err) {
	case ClassInvalidInput:
		return http.StatusBadRequest, "Please provide a valid GitHub repository URL"
	case ClassNotFound:
		return http.StatusNotFound, "No React component files found in components or pages directories"
	case ClassTimeout:
		return http.StatusGatewayTimeout, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body AuditResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write API response", "error", err)
	}
}
