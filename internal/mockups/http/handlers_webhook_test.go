package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
	"github.com/printloom/mockup-backend/internal/mockups/service"
	"github.com/printloom/mockup-backend/internal/realtime"
)

type fakeDesignStore struct {
	design *domain.Design
	owner  string

	pendingErr   error
	readyApplied bool
	readyIDs     []int64
	readyURLs    []string
	errorApplied bool
	errorIDs     []int64
}

func (s *fakeDesignStore) GetByID(_ context.Context, id int64) (*domain.Design, error) {
	if s.design == nil || s.design.ID != id {
		return nil, domain.ErrDesignNotFound
	}
	return s.design, nil
}

func (s *fakeDesignStore) GetOwner(_ context.Context, id int64) (string, error) {
	if s.owner == "" {
		return "", domain.ErrDesignNotFound
	}
	return s.owner, nil
}

func (s *fakeDesignStore) MarkPending(_ context.Context, id int64) error {
	return s.pendingErr
}

func (s *fakeDesignStore) MarkReady(_ context.Context, id int64, mockupURL string) (bool, error) {
	s.readyIDs = append(s.readyIDs, id)
	s.readyURLs = append(s.readyURLs, mockupURL)
	return s.readyApplied, nil
}

func (s *fakeDesignStore) MarkError(_ context.Context, id int64, allowDraft bool) (bool, error) {
	s.errorIDs = append(s.errorIDs, id)
	return s.errorApplied, nil
}

type fakeNotifier struct {
	owners []string
	events []realtime.Event
}

func (n *fakeNotifier) Notify(_ context.Context, owner string, event realtime.Event) error {
	n.owners = append(n.owners, owner)
	n.events = append(n.events, event)
	return nil
}

func setupWebhookRouter(store service.DesignStore, notifier service.Notifier, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	webhooks := service.NewWebhookService(store, notifier)
	h := New(nil, webhooks, secret)
	h.RegisterVendorWebhookRoutes(r.Group("/vendor"))

	return r
}

func postWebhook(r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/vendor/webhooks/vendor", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVendorWebhook_TaskFinished(t *testing.T) {
	store := &fakeDesignStore{owner: "user-1", readyApplied: true}
	notifier := &fakeNotifier{}
	r := setupWebhookRouter(store, notifier, "")

	body := `{"type":"task_finished","data":{"mockup":{"external_id":"42","mockup_url":"https://cdn/42.png"}}}`
	w := postWebhook(r, body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	require.Equal(t, []int64{42}, store.readyIDs)
	assert.Equal(t, []string{"https://cdn/42.png"}, store.readyURLs)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "user-1", notifier.owners[0])
	assert.Equal(t, domain.NotifyMockupReady, notifier.events[0].Type)
	assert.Equal(t, int64(42), notifier.events[0].DesignID)
}

func TestVendorWebhook_DuplicateDeliveryStillSucceeds(t *testing.T) {
	store := &fakeDesignStore{owner: "user-1", readyApplied: true}
	notifier := &fakeNotifier{}
	r := setupWebhookRouter(store, notifier, "")

	body := `{"type":"task_finished","data":{"mockup":{"external_id":"42","mockup_url":"https://cdn/42.png"}}}`
	w := postWebhook(r, body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Second delivery: the conditional update no longer applies.
	store.readyApplied = false
	w = postWebhook(r, body, nil)
	assert.Equal(t, http.StatusOK, w.Code, "replays must be acknowledged")
	assert.Len(t, notifier.events, 1, "only the first delivery notifies")
}

func TestVendorWebhook_TaskFailed(t *testing.T) {
	store := &fakeDesignStore{owner: "user-1", errorApplied: true}
	notifier := &fakeNotifier{}
	r := setupWebhookRouter(store, notifier, "")

	body := `{"type":"task_failed","data":{"task":{"external_id":"42","reason":"image too small"}}}`
	w := postWebhook(r, body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []int64{42}, store.errorIDs)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, domain.NotifyMockupError, notifier.events[0].Type)
	assert.Equal(t, "image too small", notifier.events[0].Reason)
}

func TestVendorWebhook_MissingCorrelationID(t *testing.T) {
	store := &fakeDesignStore{}
	r := setupWebhookRouter(store, &fakeNotifier{}, "")

	t.Run("missing task data", func(t *testing.T) {
		w := postWebhook(r, `{"type":"task_failed","data":{}}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing external_id", func(t *testing.T) {
		w := postWebhook(r, `{"type":"task_finished","data":{"mockup":{"mockup_url":"https://cdn/42.png"}}}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Empty(t, store.readyIDs, "malformed payloads must not mutate state")
	assert.Empty(t, store.errorIDs)
}

func TestVendorWebhook_UnknownDesignIsAcknowledged(t *testing.T) {
	// MarkReady affects no rows and GetOwner finds nothing; still a 200.
	store := &fakeDesignStore{readyApplied: false}
	notifier := &fakeNotifier{}
	r := setupWebhookRouter(store, notifier, "")

	body := `{"type":"task_finished","data":{"mockup":{"external_id":"9999","mockup_url":"https://cdn/x.png"}}}`
	w := postWebhook(r, body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, notifier.events)
}

func TestVendorWebhook_UnrecognizedTypeIsAcknowledged(t *testing.T) {
	r := setupWebhookRouter(&fakeDesignStore{}, &fakeNotifier{}, "")

	w := postWebhook(r, `{"type":"stock_updated","data":{}}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestVendorWebhook_SecretCheck(t *testing.T) {
	store := &fakeDesignStore{owner: "user-1", readyApplied: true}
	r := setupWebhookRouter(store, &fakeNotifier{}, "hook-secret")

	body := `{"type":"task_finished","data":{"mockup":{"external_id":"42","mockup_url":"https://cdn/42.png"}}}`

	t.Run("rejects missing secret", func(t *testing.T) {
		w := postWebhook(r, body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		w := postWebhook(r, body, map[string]string{"X-Vendor-Webhook-Secret": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts correct secret", func(t *testing.T) {
		w := postWebhook(r, body, map[string]string{"X-Vendor-Webhook-Secret": "hook-secret"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
