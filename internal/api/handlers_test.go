package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/feed"
	"example.com/fittrack/internal/store/memory"
)

func newTestHandler() *Handler {
	service := domain.NewService(memory.New(), feed.Nop{})
	return NewHandler(service)
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestRegisterRedactsPassword(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/users",
		`{"username":"runner","password":"hunter2","email":"runner@example.com"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := resp["password"]; ok {
		t.Fatal("password must not appear in responses")
	}
	if resp["username"] != "runner" {
		t.Fatalf("unexpected username %v", resp["username"])
	}
	if resp["daily_water_goal"] != float64(2000) {
		t.Fatalf("expected default goal 2000 got %v", resp["daily_water_goal"])
	}
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/users",
		`{"username":"runner","password":"x","email":"a@example.com"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPost, "/v1/users",
		`{"username":"runner","password":"y","email":"b@example.com"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/users", `{"username":"","password":"x","email":"a@example.com"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestUserNotFound(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodGet, "/v1/users/999", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	handler := newTestHandler()

	// Seed fixture password is "password".
	rr := serve(handler, http.MethodPost, "/v1/login", `{"username":"testuser","password":"nope"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	rr = serve(handler, http.MethodPost, "/v1/login", `{"username":"testuser","password":"password"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateActivityWithRoute(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/activities",
		`{"user_id":1,"title":"Morning Run","activity_type":"run","distance_km":5,"duration_sec":1500,"coordinates":"[[51.5,-0.12],[51.51,-0.13]]"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ActivityDetailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Activity.IsPublic {
		t.Fatal("activities default to public")
	}
	if resp.Route == nil {
		t.Fatal("expected route in response")
	}

	rr = serve(handler, http.MethodGet, fmt.Sprintf("/v1/activities/%d", resp.Activity.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestNearbyReturnsRecent(t *testing.T) {
	handler := newTestHandler()

	for i := 0; i < 3; i++ {
		rr := serve(handler, http.MethodPost, "/v1/activities",
			`{"user_id":1,"title":"Run","activity_type":"run"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rr.Code)
		}
	}

	rr := serve(handler, http.MethodGet, "/v1/activities/nearby?lat=51.5&lng=-0.12&radius_km=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ActivityListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 activities got %d", len(resp.Items))
	}
}

func TestPostsPagination(t *testing.T) {
	handler := newTestHandler()

	for i := 0; i < 7; i++ {
		rr := serve(handler, http.MethodPost, "/v1/posts", `{"user_id":1,"content":"hello"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rr.Code)
		}
	}

	rr := serve(handler, http.MethodGet, "/v1/posts?limit=3&offset=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp PostListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 posts got %d", len(resp.Items))
	}
	if resp.Items[0].ID != 4 {
		t.Fatalf("expected post 4 first got %d", resp.Items[0].ID)
	}
}

func TestLikeEndpointIdempotent(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/posts", `{"user_id":1,"content":"hello"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}
	var post PostView
	if err := json.Unmarshal(rr.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var first, second LikeView
	rr = serve(handler, http.MethodPost, fmt.Sprintf("/v1/posts/%d/likes", post.ID), `{"user_id":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	rr = serve(handler, http.MethodPost, fmt.Sprintf("/v1/posts/%d/likes", post.ID), `{"user_id":1}`)
	if err := json.Unmarshal(rr.Body.Bytes(), &second); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same like id, got %d and %d", first.ID, second.ID)
	}

	rr = serve(handler, http.MethodGet, fmt.Sprintf("/v1/posts/%d/likes", post.ID), "")
	var likes LikeListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &likes); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(likes.Items) != 1 {
		t.Fatalf("expected 1 like got %d", len(likes.Items))
	}

	rr = serve(handler, http.MethodDelete, fmt.Sprintf("/v1/posts/%d/likes?user_id=1", post.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/posts", `{"user_id":1,"content":"hello"}`)
	var post PostView
	if err := json.Unmarshal(rr.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	for _, content := range []string{"first", "second"} {
		rr = serve(handler, http.MethodPost, fmt.Sprintf("/v1/posts/%d/comments", post.ID),
			fmt.Sprintf(`{"user_id":1,"content":"%s"}`, content))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rr.Code)
		}
	}

	rr = serve(handler, http.MethodGet, fmt.Sprintf("/v1/posts/%d/comments", post.ID), "")
	var comments CommentListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &comments); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(comments.Items) != 2 || comments.Items[0].Content != "first" {
		t.Fatalf("unexpected comments %+v", comments.Items)
	}
}

func TestWaterEndpoints(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPost, "/v1/users/1/water", `{"amount_ml":250}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	rr = serve(handler, http.MethodPost, "/v1/users/1/water", `{"amount_ml":0}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	rr = serve(handler, http.MethodGet, "/v1/users/1/water", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var history WaterListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(history.Items) != 1 {
		t.Fatalf("expected 1 record got %d", len(history.Items))
	}

	rr = serve(handler, http.MethodGet, "/v1/users/1/water?date=not-a-date", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	handler := newTestHandler()

	rr := serve(handler, http.MethodPatch, "/v1/users/1", `{"email":"new@example.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp UserView
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Email != "new@example.com" {
		t.Fatalf("unexpected email %s", resp.Email)
	}
	if resp.Username != "testuser" {
		t.Fatalf("username should be unchanged, got %s", resp.Username)
	}
}
