package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/http/middleware"
	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/service"
)

// requireUser resolves the session identity for a dashboard request. The
// gate only verifies token claims, so an account deleted or suspended after
// issue still reaches the handler; the re-fetch comes back nil and the
// session is treated as expired.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	current, err := middleware.CurrentUser(r)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if current == nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "session expired", nil)
		return nil, false
	}
	return current, true
}

func parsePathID(input string) (uint, error) {
	id64, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func paginatedData[T any](res repository.PageResult[T]) map[string]any {
	return map[string]any{
		"items": res.Items,
		"pagination": map[string]any{
			"page":        res.Page,
			"page_size":   res.PageSize,
			"total":       res.Total,
			"total_pages": res.TotalPages,
		},
	}
}

// writeServiceError maps service and repository errors onto the wire
// envelope. Anything unmapped becomes a generic 500 so store internals never
// reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "validation failed", verr.Fields)
	case errors.Is(err, service.ErrPermissionDenied):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "permission denied", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", service.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, service.ErrAccountSuspended):
		response.Error(w, r, http.StatusForbidden, "ACCOUNT_SUSPENDED", service.ErrAccountSuspended.Error(), nil)
	case errors.Is(err, service.ErrAccountInactive):
		response.Error(w, r, http.StatusForbidden, "ACCOUNT_INACTIVE", service.ErrAccountInactive.Error(), nil)
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", service.ErrEmailTaken.Error(), nil)
	case errors.Is(err, repository.ErrDuplicateRole):
		response.Error(w, r, http.StatusConflict, "DUPLICATE_ROLE", repository.ErrDuplicateRole.Error(), nil)
	case errors.Is(err, repository.ErrDuplicatePermission):
		response.Error(w, r, http.StatusConflict, "DUPLICATE_PERMISSION", repository.ErrDuplicatePermission.Error(), nil)
	case errors.Is(err, service.ErrSelfDelete):
		response.Error(w, r, http.StatusConflict, "SELF_DELETE", service.ErrSelfDelete.Error(), nil)
	case errors.Is(err, service.ErrUnknownRole), errors.Is(err, repository.ErrUnknownGrantIDs):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, repository.ErrPostNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrPermissionNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrFileTooBig), errors.Is(err, service.ErrInvalidFileType):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, service.ErrNoDefaultRole):
		// Operator problem, not a user mistake: the role table was never
		// seeded. The client only learns that signup cannot proceed.
		response.Error(w, r, http.StatusInternalServerError, "CONFIGURATION", "registration is unavailable, please contact an administrator", nil)
	case errors.Is(err, service.ErrStorageDisabled):
		response.Error(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", service.ErrStorageDisabled.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "operation failed", nil)
	}
}
