package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/teleskin-lab/teleskin/pkg/controller/http"
	"github.com/teleskin-lab/teleskin/pkg/repository/blob"
	"github.com/teleskin-lab/teleskin/pkg/repository/memory"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
)

func newTestServer(t *testing.T) (*httptest.Server, *nethttp.Client) {
	t.Helper()

	feeds := feed.NewRegistry()
	uc := usecase.New(memory.New(), usecase.WithFeeds(feeds))
	ts := httptest.NewServer(httpctrl.New(uc, feeds))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	gt.NoError(t, err).Required()
	return ts, &nethttp.Client{Jar: jar}
}

func postJSON(t *testing.T, client *nethttp.Client, url string, body any) *nethttp.Response {
	t.Helper()

	data, err := json.Marshal(body)
	gt.NoError(t, err).Required()
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(out)).Required()
}

func loginDoctor(t *testing.T, client *nethttp.Client, baseURL string) {
	t.Helper()

	resp := postJSON(t, client, baseURL+"/api/auth/doctor/login", map[string]string{
		"name":     "Dr. Chen",
		"password": "password",
	})
	gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)
}

func loginPatient(t *testing.T, client *nethttp.Client, baseURL, patientID string) {
	t.Helper()

	resp := postJSON(t, client, baseURL+"/api/auth/patient/code", map[string]string{
		"patient_id": patientID,
	})
	gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

	resp = postJSON(t, client, baseURL+"/api/auth/patient/verify", map[string]string{
		"patient_id": patientID,
		"code":       "1234",
	})
	gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("doctor login sets cookies that restore the session", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp, err := client.Get(ts.URL + "/api/auth/me")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()

		var me struct {
			Role       string `json:"role"`
			DoctorName string `json:"doctor_name"`
		}
		decodeBody(t, resp, &me)
		gt.Value(t, me.Role).Equal("doctor")
		gt.Value(t, me.DoctorName).Equal("Dr. Chen")
	})

	t.Run("doctor login with a short password is rejected", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp := postJSON(t, client, ts.URL+"/api/auth/doctor/login", map[string]string{
			"name":     "Dr. Chen",
			"password": "abc",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)
	})

	t.Run("patient two-step login", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp := postJSON(t, client, ts.URL+"/api/auth/patient/code", map[string]string{
			"patient_id": "1",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		resp = postJSON(t, client, ts.URL+"/api/auth/patient/verify", map[string]string{
			"patient_id": "1",
			"code":       "0000",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)

		resp = postJSON(t, client, ts.URL+"/api/auth/patient/verify", map[string]string{
			"patient_id": "1",
			"code":       "1234",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var session struct {
			Role      string `json:"role"`
			PatientID string `json:"patient_id"`
		}
		decodeBody(t, resp, &session)
		gt.Value(t, session.Role).Equal("patient")
		gt.Value(t, session.PatientID).Equal("1")
	})

	t.Run("verify without requesting a code is rejected", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp := postJSON(t, client, ts.URL+"/api/auth/patient/verify", map[string]string{
			"patient_id": "1",
			"code":       "1234",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)
	})

	t.Run("reset disarms a pending login", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp := postJSON(t, client, ts.URL+"/api/auth/patient/code", map[string]string{
			"patient_id": "1",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		resp = postJSON(t, client, ts.URL+"/api/auth/patient/reset", map[string]string{
			"patient_id": "1",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		resp = postJSON(t, client, ts.URL+"/api/auth/patient/verify", map[string]string{
			"patient_id": "1",
			"code":       "1234",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)
	})

	t.Run("logout drops the session", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/auth/logout", map[string]string{})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		resp2, err := client.Get(ts.URL + "/api/auth/me")
		gt.NoError(t, err).Required()
		defer resp2.Body.Close()

		var me struct {
			Role string `json:"role"`
		}
		decodeBody(t, resp2, &me)
		gt.Value(t, me.Role).Equal("none")
	})

	t.Run("anonymous me reports role none without an error", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp, err := client.Get(ts.URL + "/api/auth/me")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var me struct {
			Role string `json:"role"`
		}
		decodeBody(t, resp, &me)
		gt.Value(t, me.Role).Equal("none")
	})
}

func TestRoleGates(t *testing.T) {
	t.Run("anonymous roster access is unauthorized", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)
	})

	t.Run("patient roster access is forbidden", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		resp, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusForbidden)
	})

	t.Run("patient reads only their own record", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		// Seed the demo roster
		resp, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		resp.Body.Close()

		patientClient := func() *nethttp.Client {
			jar, err := cookiejar.New(nil)
			gt.NoError(t, err).Required()
			return &nethttp.Client{Jar: jar}
		}()
		loginPatient(t, patientClient, ts.URL, "1")

		own, err := patientClient.Get(ts.URL + "/api/patients/1")
		gt.NoError(t, err).Required()
		defer own.Body.Close()
		gt.Number(t, own.StatusCode).Equal(nethttp.StatusOK)

		other, err := patientClient.Get(ts.URL + "/api/patients/2")
		gt.NoError(t, err).Required()
		defer other.Body.Close()
		gt.Number(t, other.StatusCode).Equal(nethttp.StatusForbidden)
	})

	t.Run("doctor reads any record", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		resp.Body.Close()

		for _, id := range []string{"1", "2", "3"} {
			resp, err := client.Get(ts.URL + "/api/patients/" + id)
			gt.NoError(t, err).Required()
			gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)
			resp.Body.Close()
		}
	})
}

func TestPatientEndpoints(t *testing.T) {
	t.Run("first roster request seeds the demo records", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var body struct {
			Patients []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"patients"`
		}
		decodeBody(t, resp, &body)
		gt.Array(t, body.Patients).Length(3).Required()
		gt.Value(t, body.Patients[0].ID).Equal("1")
		gt.Value(t, body.Patients[0].Name).Equal("Sarah Mitchell")
	})

	t.Run("add patient then read it back", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/patients", map[string]any{
			"name":      "New Patient",
			"age":       45,
			"condition": "Rosacea",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusCreated)

		var created struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &created)
		gt.String(t, created.ID).NotEqual("")

		got, err := client.Get(ts.URL + "/api/patients/" + created.ID)
		gt.NoError(t, err).Required()
		defer got.Body.Close()
		gt.Number(t, got.StatusCode).Equal(nethttp.StatusOK)
	})

	t.Run("invalid patient fields are a bad request", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/patients", map[string]any{
			"name": "",
			"age":  45,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)
	})

	t.Run("unknown patient read is not found", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp, err := client.Get(ts.URL + "/api/patients/missing")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusNotFound)
	})

	t.Run("add history entry updates the status", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		// Seed the roster first
		seed, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		seed.Body.Close()

		resp := postJSON(t, client, ts.URL+"/api/patients/1/entries", map[string]any{
			"notes":          "Severe flare at follow-up.",
			"severity_score": 9,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusCreated)

		var updated struct {
			Status  string `json:"status"`
			History []struct {
				Notes string `json:"notes"`
			} `json:"history"`
		}
		decodeBody(t, resp, &updated)
		gt.Value(t, updated.Status).Equal("Critical")
		gt.Array(t, updated.History).Length(2).Required()
		gt.Value(t, updated.History[0].Notes).Equal("Severe flare at follow-up.")
	})

	t.Run("entry for an unknown patient is not found", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/patients/missing/entries", map[string]any{
			"notes":          "test",
			"severity_score": 5,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusNotFound)
	})

	t.Run("out-of-range severity score is a bad request", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/patients/1/entries", map[string]any{
			"severity_score": 42,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)
	})
}

func TestChatEndpoint(t *testing.T) {
	t.Run("patient gets the offline fallback without a model", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		resp := postJSON(t, client, ts.URL+"/api/chat", map[string]any{
			"transcript": []map[string]string{
				{"speaker": "user", "text": "Hello"},
				{"speaker": "assistant", "text": "Hi, how can I help?"},
			},
			"message": "My arm itches.",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var body struct {
			Reply string `json:"reply"`
		}
		decodeBody(t, resp, &body)
		gt.String(t, body.Reply).NotEqual("")
	})

	t.Run("empty message is a bad request", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		resp := postJSON(t, client, ts.URL+"/api/chat", map[string]any{
			"message": "",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)
	})

	t.Run("doctor role is forbidden", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		resp := postJSON(t, client, ts.URL+"/api/chat", map[string]any{
			"message": "hello",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusForbidden)
	})
}

func TestNotificationEndpoints(t *testing.T) {
	t.Run("anonymous access is unauthorized", func(t *testing.T) {
		ts, client := newTestServer(t)

		resp, err := client.Get(ts.URL + "/api/notifications")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusUnauthorized)
	})

	t.Run("patient feed lists, reads and deletes", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		resp, err := client.Get(ts.URL + "/api/notifications")
		gt.NoError(t, err).Required()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var body struct {
			Notifications []struct {
				ID   string `json:"id"`
				Read bool   `json:"read"`
			} `json:"notifications"`
			UnreadCount int `json:"unread_count"`
		}
		decodeBody(t, resp, &body)
		resp.Body.Close()
		gt.Number(t, len(body.Notifications)).Equal(body.UnreadCount)
		if len(body.Notifications) == 0 {
			t.Fatal("expected seeded notifications")
		}

		markResp := postJSON(t, client, ts.URL+"/api/notifications/read", map[string]string{})
		gt.Number(t, markResp.StatusCode).Equal(nethttp.StatusOK)

		resp2, err := client.Get(ts.URL + "/api/notifications")
		gt.NoError(t, err).Required()
		decodeBody(t, resp2, &body)
		resp2.Body.Close()
		gt.Number(t, body.UnreadCount).Equal(0)

		req, err := nethttp.NewRequest(nethttp.MethodDelete,
			ts.URL+"/api/notifications/"+body.Notifications[0].ID, nil)
		gt.NoError(t, err).Required()
		delResp, err := client.Do(req)
		gt.NoError(t, err).Required()
		defer delResp.Body.Close()
		gt.Number(t, delResp.StatusCode).Equal(nethttp.StatusOK)

		resp3, err := client.Get(ts.URL + "/api/notifications")
		gt.NoError(t, err).Required()
		var after struct {
			Notifications []any `json:"notifications"`
		}
		decodeBody(t, resp3, &after)
		resp3.Body.Close()
		gt.Number(t, len(after.Notifications)).Equal(len(body.Notifications) - 1)
	})

	t.Run("deleting an unknown notification is not found", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		req, err := nethttp.NewRequest(nethttp.MethodDelete,
			ts.URL+"/api/notifications/does-not-exist", nil)
		gt.NoError(t, err).Required()
		resp, err := client.Do(req)
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusNotFound)
	})
}

func TestCheckInEndpoint(t *testing.T) {
	t.Run("patient check-in photo passes open without a model", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginDoctor(t, client, ts.URL)

		// Seed the roster so patient 1 exists
		seed, err := client.Get(ts.URL + "/api/patients")
		gt.NoError(t, err).Required()
		seed.Body.Close()

		patientClient := func() *nethttp.Client {
			jar, err := cookiejar.New(nil)
			gt.NoError(t, err).Required()
			return &nethttp.Client{Jar: jar}
		}()
		loginPatient(t, patientClient, ts.URL, "1")

		body, contentType := multipartPhoto(t, []byte("fake-jpeg-bytes"))
		resp, err := patientClient.Post(ts.URL+"/api/checkins/verify", contentType, body)
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)

		var result struct {
			Verified bool `json:"verified"`
		}
		decodeBody(t, resp, &result)
		gt.Bool(t, result.Verified).True()
	})

	t.Run("missing photo is a bad request", func(t *testing.T) {
		ts, client := newTestServer(t)
		loginPatient(t, client, ts.URL, "1")

		resp := postJSON(t, client, ts.URL+"/api/checkins/verify", map[string]string{})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)
	})
}

// multipartPhoto builds a multipart body with one photo field
func multipartPhoto(t *testing.T, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", "photo.jpg")
	gt.NoError(t, err).Required()
	_, err = part.Write(data)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Close()).Required()
	return &buf, w.FormDataContentType()
}


// faultyPort delegates to an in-memory port until failWrites is set
type faultyPort struct {
	inner      *blob.MemPort
	failWrites bool
}

func (p *faultyPort) Read(ctx context.Context) ([]byte, error) {
	return p.inner.Read(ctx)
}

func (p *faultyPort) Write(ctx context.Context, data []byte) error {
	if p.failWrites {
		return goerr.New("write failed")
	}
	return p.inner.Write(ctx, data)
}

func TestPatientPersistenceFailure(t *testing.T) {
	port := &faultyPort{inner: blob.NewMemPort()}
	feeds := feed.NewRegistry()
	uc := usecase.New(blob.New(port), usecase.WithFeeds(feeds))
	ts := httptest.NewServer(httpctrl.New(uc, feeds))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	gt.NoError(t, err).Required()
	client := &nethttp.Client{Jar: jar}

	loginDoctor(t, client, ts.URL)

	// Seed the demo roster while writes still succeed
	resp, err := client.Get(ts.URL + "/api/patients")
	gt.NoError(t, err).Required()
	gt.Number(t, resp.StatusCode).Equal(nethttp.StatusOK)
	gt.NoError(t, resp.Body.Close())

	port.failWrites = true

	t.Run("add patient reports an internal error", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/api/patients", map[string]any{
			"name": "New Patient", "age": 40, "condition": "Rosacea",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusInternalServerError)
	})

	t.Run("add entry reports an internal error", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/api/patients/1/entries", map[string]any{
			"notes": "follow-up", "severity_score": 5,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusInternalServerError)
	})

	t.Run("invalid fields still map to bad request", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/api/patients", map[string]any{
			"name": "", "age": 40, "condition": "Rosacea",
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)

		resp = postJSON(t, client, ts.URL+"/api/patients/1/entries", map[string]any{
			"notes": "follow-up", "severity_score": 42,
		})
		gt.Number(t, resp.StatusCode).Equal(nethttp.StatusBadRequest)
	})
}
