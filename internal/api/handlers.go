// Package api exposes the HTTP handlers of the fittrack service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/fittrack/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/users", h.users)
	mux.HandleFunc("/v1/users/", h.userSubtree)
	mux.HandleFunc("/v1/login", h.login)
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activitySubtree)
	mux.HandleFunc("/v1/posts", h.posts)
	mux.HandleFunc("/v1/posts/", h.postSubtree)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), domain.RegisterInput{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
		DailyWaterGoal: req.DailyWaterGoal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken", "username already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) userSubtree(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/v1/users/")
	if len(segments) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	userID, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "user id must be a positive integer")
		return
	}

	switch {
	case len(segments) == 1:
		h.user(w, r, userID)
	case len(segments) == 2 && segments[1] == "water":
		h.water(w, r, userID)
	case len(segments) == 2 && segments[1] == "activities":
		h.userActivities(w, r, userID)
	case len(segments) == 2 && segments[1] == "posts":
		h.userPosts(w, r, userID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request, userID int64) {
	switch r.Method {
	case http.MethodGet:
		user, err := h.service.Profile(r.Context(), userID)
		if err != nil {
			writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserView(*user))
	case http.MethodPatch:
		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), userID, domain.UserUpdate{
			Username:       req.Username,
			Password:       req.Password,
			Email:          req.Email,
			ProfilePicture: req.ProfilePicture,
			DailyWaterGoal: req.DailyWaterGoal,
		})
		if err != nil {
			if errors.Is(err, domain.ErrUsernameTaken) {
				writeError(w, http.StatusConflict, "username_taken", "username already taken")
				return
			}
			writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserView(*user))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) water(w http.ResponseWriter, r *http.Request, userID int64) {
	switch r.Method {
	case http.MethodPost:
		var req LogWaterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		record, err := h.service.LogWaterIntake(r.Context(), domain.NewWaterIntake{
			UserID:   userID,
			AmountMl: req.AmountMl,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toWaterView(*record))
	case http.MethodGet:
		if raw := r.URL.Query().Get("date"); raw != "" {
			day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
				return
			}
			records, total, err := h.service.WaterIntakeForDay(r.Context(), userID, day)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "server_error", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, DailyWaterResponse{
				Items:   toWaterViews(records),
				TotalMl: total,
			})
			return
		}

		records, err := h.service.WaterIntakeHistory(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, WaterListResponse{Items: toWaterViews(records)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) userActivities(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	activities, err := h.service.UserActivities(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ActivityListResponse{Items: toActivityViews(activities)})
}

func (h *Handler) userPosts(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	posts, err := h.service.PostsOf(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Items: toPostViews(posts)})
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, route, err := h.service.RecordActivity(r.Context(), domain.NewActivity{
		UserID:        req.UserID,
		Title:         req.Title,
		ActivityType:  req.ActivityType,
		DistanceKm:    req.DistanceKm,
		DurationSec:   req.DurationSec,
		ElevationGain: req.ElevationGain,
		Weather:       req.Weather,
		Temperature:   req.Temperature,
		IsPublic:      req.IsPublic,
	}, req.Coordinates)
	if err != nil {
		writeUserError(w, err)
		return
	}

	resp := ActivityDetailResponse{Activity: toActivityView(*activity)}
	if route != nil {
		view := toRouteView(*route)
		resp.Route = &view
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) activitySubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	segments := pathSegments(r.URL.Path, "/v1/activities/")
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	switch segments[0] {
	case "recent":
		h.recentActivities(w, r)
	case "nearby":
		h.nearbyActivities(w, r)
	default:
		id, err := strconv.ParseInt(segments[0], 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "activity id must be a positive integer")
			return
		}
		h.activityDetail(w, r, id)
	}
}

func (h *Handler) activityDetail(w http.ResponseWriter, r *http.Request, id int64) {
	activity, route, err := h.service.ActivityDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := ActivityDetailResponse{Activity: toActivityView(*activity)}
	if route != nil {
		view := toRouteView(*route)
		resp.Route = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recentActivities(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	activities, err := h.service.RecentFeed(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ActivityListResponse{Items: toActivityViews(activities)})
}

func (h *Handler) nearbyActivities(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	radius, err3 := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "lat, lng and radius_km are required numbers")
		return
	}

	activities, err := h.service.NearbyFeed(r.Context(), lat, lng, radius)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ActivityListResponse{Items: toActivityViews(activities)})
}

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		post, err := h.service.SharePost(r.Context(), domain.NewPost{
			UserID:     req.UserID,
			ActivityID: req.ActivityID,
			Content:    req.Content,
			ImageURL:   req.ImageURL,
		})
		if err != nil {
			if errors.Is(err, domain.ErrActivityNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "activity not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, toPostView(*post))
	case http.MethodGet:
		limit := 20
		offset := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "validation_failed", "limit must be a non-negative integer")
				return
			}
			limit = parsed
		}
		if raw := r.URL.Query().Get("offset"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "validation_failed", "offset must be a non-negative integer")
				return
			}
			offset = parsed
		}

		posts, err := h.service.PostsPage(r.Context(), limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, PostListResponse{Items: toPostViews(posts)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) postSubtree(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/v1/posts/")
	if len(segments) != 2 {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	postID, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "post id must be a positive integer")
		return
	}

	switch segments[1] {
	case "likes":
		h.likes(w, r, postID)
	case "comments":
		h.comments(w, r, postID)
	case "engagement":
		h.engagement(w, r, postID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) likes(w http.ResponseWriter, r *http.Request, postID int64) {
	switch r.Method {
	case http.MethodPost:
		var req LikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		like, err := h.service.LikePost(r.Context(), req.UserID, postID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toLikeView(*like))
	case http.MethodDelete:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "user_id must be a positive integer")
			return
		}
		if err := h.service.UnlikePost(r.Context(), userID, postID); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		likes, _, err := h.service.PostEngagement(r.Context(), postID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, LikeListResponse{Items: toLikeViews(likes)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request, postID int64) {
	switch r.Method {
	case http.MethodPost:
		var req CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		comment, err := h.service.CommentOnPost(r.Context(), domain.NewComment{
			UserID:  req.UserID,
			PostID:  postID,
			Content: req.Content,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, toCommentView(*comment))
	case http.MethodGet:
		_, comments, err := h.service.PostEngagement(r.Context(), postID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, CommentListResponse{Items: toCommentViews(comments)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) engagement(w http.ResponseWriter, r *http.Request, postID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	likes, comments, err := h.service.PostEngagement(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EngagementResponse{
		Likes:    toLikeViews(likes),
		Comments: toCommentViews(comments),
	})
}

func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

// pathSegments splits the path remainder after prefix into non-empty segments.
func pathSegments(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
