package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/service"
)

type PostHandler struct {
	postSvc service.PostServiceInterface
}

func NewPostHandler(postSvc service.PostServiceInterface) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// Home is the public feed: published posts only, newest first.
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.postSvc.ListPublished(pageReq)
	if err != nil {
		observability.RecordListRequestDuration(r.Context(), "home", "failure", time.Since(start))
		writeServiceError(w, r, err)
		return
	}
	observability.RecordListRequestDuration(r.Context(), "home", "success", time.Since(start))
	observability.RecordListPageSize(r.Context(), "home", pageReq.PageSize)
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

func (h *PostHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return
	}
	post, err := h.postSvc.GetPublished(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

// List is the dashboard post list: everything for posts:read holders, the
// caller's own posts otherwise.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.postSvc.List(r.Context(), current, pageReq)
	if err != nil {
		observability.RecordListRequestDuration(r.Context(), "dashboard_posts", "failure", time.Since(start))
		writeServiceError(w, r, err)
		return
	}
	observability.RecordListRequestDuration(r.Context(), "dashboard_posts", "success", time.Since(start))
	observability.RecordListPageSize(r.Context(), "dashboard_posts", pageReq.PageSize)
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return
	}
	post, err := h.postSvc.Get(r.Context(), current, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
	Status  string `json:"status"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body postBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	post, err := h.postSvc.Create(r.Context(), current, service.PostInput{
		Title:   body.Title,
		Content: body.Content,
		Excerpt: body.Excerpt,
		Status:  body.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "post.create", "post_id", post.ID, "author_id", post.AuthorID)
	response.JSON(w, r, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return
	}
	var body postBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	post, err := h.postSvc.Update(r.Context(), current, id, service.PostInput{
		Title:   body.Title,
		Content: body.Content,
		Excerpt: body.Excerpt,
		Status:  body.Status,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "post.update", "post_id", post.ID)
	response.JSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	post, err := h.postSvc.SetStatus(r.Context(), current, id, body.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "post.status", "post_id", post.ID, "status", post.Status)
	response.JSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return
	}
	if err := h.postSvc.Delete(r.Context(), current, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "post.delete", "post_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
