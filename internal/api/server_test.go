package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trackd/internal/api"
	"trackd/internal/testutil"
	"trackd/internal/tracker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	idgen := testutil.NewStubIDGenerator()
	disp := tracker.NewStoreDispatcher(st, tracker.NewNopLogger(), clock, idgen)
	svc := tracker.NewService(st, disp, tracker.NewNopLogger(), clock, idgen)
	srv := httptest.NewServer(api.NewServer(svc, nil, 24*time.Hour).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// doJSON performs a request with an optional bearer token and decodes the
// JSON response into a generic map.
func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func registerViaAPI(t *testing.T, baseURL, name, email string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter2secret",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s status = %d, want 201 (%v)", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s returned no token", email)
	}
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerViaAPI(t, srv.URL, "Alice", "alice@example.com")

	t.Run("token resolves via /api/auth/me", func(t *testing.T) {
		status, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if body["email"] != "alice@example.com" {
			t.Errorf("email = %v, want alice@example.com", body["email"])
		}
	})

	t.Run("login with wrong password is a 401", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
		if body["error"] != "invalid credentials" {
			t.Errorf("error = %v, want invalid credentials", body["error"])
		}
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		if status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", token, nil); status != http.StatusOK {
			t.Fatalf("logout status = %d, want 200", status)
		}
		if status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil); status != http.StatusUnauthorized {
			t.Errorf("me after logout status = %d, want 401", status)
		}
	})

	t.Run("no token is a 401", func(t *testing.T) {
		if status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/projects", "", nil); status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})
}

func TestProjectAndTicketFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := registerViaAPI(t, srv.URL, "Alice", "alice@example.com")
	mallory := registerViaAPI(t, srv.URL, "Mallory", "mallory@example.com")

	status, project := doJSON(t, http.MethodPost, srv.URL+"/api/projects", alice, map[string]string{
		"title":       "Engineering",
		"description": "core work",
		"key":         "eng",
	})
	if status != http.StatusCreated {
		t.Fatalf("create project status = %d (%v)", status, project)
	}
	projectID, _ := project["id"].(string)
	if project["key"] != "ENG" {
		t.Errorf("project key = %v, want ENG", project["key"])
	}

	t.Run("duplicate key is a 409", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/projects", alice, map[string]string{
			"title":       "Copy",
			"description": "same key again",
			"key":         "ENG",
		})
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	status, ticket := doJSON(t, http.MethodPost, srv.URL+"/api/projects/"+projectID+"/tickets", alice, map[string]string{
		"title":       "Login fails",
		"description": "safari only",
	})
	if status != http.StatusCreated {
		t.Fatalf("create ticket status = %d (%v)", status, ticket)
	}
	ticketID, _ := ticket["id"].(string)
	if ticket["ticketKey"] != "ENG-1" {
		t.Errorf("ticket key = %v, want ENG-1", ticket["ticketKey"])
	}

	t.Run("non-members get a 403", func(t *testing.T) {
		if status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/tickets/"+ticketID, mallory, nil); status != http.StatusForbidden {
			t.Errorf("status = %d, want 403", status)
		}
	})

	t.Run("missing tickets are a 404", func(t *testing.T) {
		if status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/tickets/nope", alice, nil); status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("invalid status value is a 400", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPut, srv.URL+"/api/tickets/"+ticketID, alice, map[string]string{
			"status": "archived",
		})
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("comments post and list", func(t *testing.T) {
		status, comment := doJSON(t, http.MethodPost, srv.URL+"/api/tickets/"+ticketID+"/comments", alice, map[string]string{
			"text": "repro attached",
		})
		if status != http.StatusCreated {
			t.Fatalf("create comment status = %d (%v)", status, comment)
		}
		if comment["text"] != "repro attached" {
			t.Errorf("comment text = %v", comment["text"])
		}
	})

	t.Run("activity feed includes creation", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/tickets/"+ticketID+"/activity", nil)
		req.Header.Set("Authorization", "Bearer "+alice)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET activity error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var activities []map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
			t.Fatalf("decoding activity feed: %v", err)
		}
		if len(activities) == 0 {
			t.Fatal("activity feed is empty")
		}
		if activities[len(activities)-1]["action"] != "created" {
			t.Errorf("oldest activity action = %v, want created", activities[len(activities)-1]["action"])
		}
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/projects", bytes.NewBufferString("{nope"))
		req.Header.Set("Authorization", "Bearer "+alice)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestNotificationEndpoints(t *testing.T) {
	srv := newTestServer(t)
	alice := registerViaAPI(t, srv.URL, "Alice", "alice@example.com")
	bob := registerViaAPI(t, srv.URL, "Bob", "bob@example.com")

	_, project := doJSON(t, http.MethodPost, srv.URL+"/api/projects", alice, map[string]string{
		"title":       "Engineering",
		"description": "core work",
		"key":         "ENG",
	})
	projectID, _ := project["id"].(string)

	if status, body := doJSON(t, http.MethodPost, srv.URL+"/api/projects/"+projectID+"/members", alice, map[string]string{
		"email": "bob@example.com",
	}); status != http.StatusOK {
		t.Fatalf("add member status = %d (%v)", status, body)
	}

	status, list := doJSON(t, http.MethodGet, srv.URL+"/api/notifications", bob, nil)
	if status != http.StatusOK {
		t.Fatalf("notifications status = %d", status)
	}
	if unread, _ := list["unreadCount"].(float64); unread != 1 {
		t.Errorf("unreadCount = %v, want 1", list["unreadCount"])
	}

	if status, _ := doJSON(t, http.MethodPut, srv.URL+"/api/notifications/read-all", bob, nil); status != http.StatusOK {
		t.Fatalf("read-all status = %d", status)
	}
	_, after := doJSON(t, http.MethodGet, srv.URL+"/api/notifications", bob, nil)
	if unread, _ := after["unreadCount"].(float64); unread != 0 {
		t.Errorf("unreadCount after read-all = %v, want 0", after["unreadCount"])
	}
}
