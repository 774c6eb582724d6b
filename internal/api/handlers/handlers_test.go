package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/pkg/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memStore struct {
	attendees map[uuid.UUID]*models.Attendee
	clients   []models.Client
	events    []models.Event
	createErr error
}

func newMemStore() *memStore {
	return &memStore{attendees: map[uuid.UUID]*models.Attendee{}}
}

func (m *memStore) CreateAttendee(ctx context.Context, a *models.Attendee) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.attendees[a.ID] = a
	return nil
}

func (m *memStore) GetAttendee(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	return m.attendees[id], nil
}

func (m *memStore) CreateClient(ctx context.Context, name, logoURL string) (*models.Client, error) {
	for _, c := range m.clients {
		if c.Name == name {
			return nil, fmt.Errorf("client %q: %w", name, models.ErrDuplicate)
		}
	}
	c := models.Client{ID: uuid.New(), Name: name, LogoURL: logoURL, CreatedAt: time.Now()}
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *memStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return &m.clients[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) ListClients(ctx context.Context) ([]models.Client, error) {
	return m.clients, nil
}

func (m *memStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	for _, e := range m.events {
		if e.Name == ev.Name {
			return models.ErrDuplicate
		}
	}
	ev.ID = uuid.New()
	ev.Collections = []models.CollectionGroup{}
	m.events = append(m.events, *ev)
	return nil
}

func (m *memStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	for i := range m.events {
		if m.events[i].ID == id {
			ev := m.events[i]
			return &ev, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	return m.events, nil
}

func (m *memStore) AppendCollectionGroup(ctx context.Context, eventID uuid.UUID, group models.CollectionGroup) error {
	for i := range m.events {
		if m.events[i].ID == eventID {
			m.events[i].Collections = append(m.events[i].Collections, group)
			return nil
		}
	}
	return models.ErrNotFound
}

type memBlobs struct {
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	b.objects[key] = data
	return nil
}

func (b *memBlobs) DeleteObject(ctx context.Context, key string) error {
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBlobs) URL(key string) string {
	return "http://minio:9000/photos/" + key
}

type stubMatcher struct {
	res *matching.Result
	err error
}

func (s *stubMatcher) FindMatches(ctx context.Context, attendeeID uuid.UUID) (*matching.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := *s.res
	res.AttendeeID = attendeeID
	return &res, nil
}

type recordingPublisher struct {
	tasks []models.IndexTask
	err   error
}

func (p *recordingPublisher) PublishIndexTask(ctx context.Context, task models.IndexTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}

func TestMatches_Success(t *testing.T) {
	matcher := &stubMatcher{res: &matching.Result{MatchedEvents: []matching.EventMatch{{
		EventName:   "Gala",
		Collections: []matching.CollectionMatch{{CollectionName: "A", Images: []string{"A1"}}},
	}}}}
	r := gin.New()
	h := NewAttendeeHandler(newMemStore(), newMemBlobs(), matcher)
	r.GET("/v1/attendees/:id/matches", h.Matches)

	id := uuid.New()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/"+id.String()+"/matches", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[dto.MatchResponse](t, w)
	if resp.AttendeeID != id {
		t.Errorf("expected attendee %s, got %s", id, resp.AttendeeID)
	}
	if len(resp.MatchedEvents) != 1 || resp.MatchedEvents[0].Collections[0].Images[0] != "A1" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestMatches_EmptyResultIsArray(t *testing.T) {
	r := gin.New()
	h := NewAttendeeHandler(newMemStore(), newMemBlobs(), &stubMatcher{res: &matching.Result{MatchedEvents: []matching.EventMatch{}}})
	r.GET("/v1/attendees/:id/matches", h.Matches)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/"+uuid.NewString()+"/matches", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"matchedEvents":[]`) {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestMatches_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		kind       error
		wantStatus int
	}{
		{"person not found", matching.ErrPersonNotFound, http.StatusNotFound},
		{"unreachable content", matching.ErrUnreachableContent, http.StatusBadGateway},
		{"index query failed", matching.ErrIndexQueryFailed, http.StatusBadGateway},
		{"catalog read failed", matching.ErrCatalogReadFailed, http.StatusInternalServerError},
		{"unclassified", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New("boom")
			if tt.kind != nil {
				err = &matching.StageError{Stage: "x", AttendeeID: "1", Kind: tt.kind, Err: errors.New("secret detail")}
			}
			r := gin.New()
			h := NewAttendeeHandler(newMemStore(), newMemBlobs(), &stubMatcher{err: err})
			r.GET("/v1/attendees/:id/matches", h.Matches)

			w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/"+uuid.NewString()+"/matches", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if strings.Contains(w.Body.String(), "secret detail") {
				t.Errorf("response leaked cause: %s", w.Body.String())
			}
		})
	}
}

func TestMatches_InvalidID(t *testing.T) {
	r := gin.New()
	h := NewAttendeeHandler(newMemStore(), newMemBlobs(), &stubMatcher{})
	r.GET("/v1/attendees/:id/matches", h.Matches)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/nope/matches", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateAttendee_JSON(t *testing.T) {
	store := newMemStore()
	r := gin.New()
	h := NewAttendeeHandler(store, newMemBlobs(), nil)
	r.POST("/v1/attendees", h.Create)
	r.GET("/v1/attendees/:id", h.Get)

	w := serve(r, jsonRequest(http.MethodPost, "/v1/attendees", map[string]string{
		"name":          "Ana",
		"email":         "ana@example.com",
		"profile_image": "profiles/ana.jpg",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[dto.AttendeeResponse](t, w)
	if created.ProfileImage != "profiles/ana.jpg" {
		t.Errorf("unexpected profile image %q", created.ProfileImage)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/"+created.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = serve(r, httptest.NewRequest(http.MethodGet, "/v1/attendees/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateAttendee_ValidationFailure(t *testing.T) {
	r := gin.New()
	h := NewAttendeeHandler(newMemStore(), newMemBlobs(), nil)
	r.POST("/v1/attendees", h.Create)

	w := serve(r, jsonRequest(http.MethodPost, "/v1/attendees", map[string]string{"name": "Ana", "phone_number": "12"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "phone_number") {
		t.Errorf("expected field error for phone_number, got %s", w.Body.String())
	}
}

func TestCreateAttendee_MultipartStoresProfileImage(t *testing.T) {
	store := newMemStore()
	blobs := newMemBlobs()
	r := gin.New()
	h := NewAttendeeHandler(store, blobs, nil)
	r.POST("/v1/attendees", h.Create)

	req := multipartRequest(t, "/v1/attendees", map[string]string{"name": "Ana", "phone_number": "5551234567"}, pngHeader)
	w := serve(r, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	created := decode[dto.AttendeeResponse](t, w)
	if !strings.HasPrefix(created.ProfileImage, "profiles/") || !strings.HasSuffix(created.ProfileImage, ".png") {
		t.Errorf("unexpected profile image key %q", created.ProfileImage)
	}
	if _, ok := blobs.objects[created.ProfileImage]; !ok {
		t.Errorf("profile image was not stored")
	}
}

func TestCreateAttendee_RemovesImageWhenInsertFails(t *testing.T) {
	store := newMemStore()
	store.createErr = errors.New("db down")
	blobs := newMemBlobs()
	r := gin.New()
	h := NewAttendeeHandler(store, blobs, nil)
	r.POST("/v1/attendees", h.Create)

	w := serve(r, multipartRequest(t, "/v1/attendees", map[string]string{"name": "Ana", "email": "a@b.io"}, pngHeader))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(blobs.objects) != 0 || len(blobs.deleted) != 1 {
		t.Errorf("expected uploaded image to be removed, objects=%v deleted=%v", blobs.objects, blobs.deleted)
	}
}

func TestClients_CreateAndList(t *testing.T) {
	store := newMemStore()
	r := gin.New()
	h := NewClientHandler(store)
	r.POST("/v1/clients", h.Create)
	r.GET("/v1/clients", h.List)

	body := map[string]string{"name": "Acme", "logo_url": "logos/acme.png"}
	if w := serve(r, jsonRequest(http.MethodPost, "/v1/clients", body)); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := serve(r, jsonRequest(http.MethodPost, "/v1/clients", body)); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}
	if w := serve(r, jsonRequest(http.MethodPost, "/v1/clients", map[string]string{"name": "NoLogo"})); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing logo, got %d", w.Code)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/clients", nil))
	resp := decode[struct {
		Clients []dto.ClientResponse `json:"clients"`
		Total   int                  `json:"total"`
	}](t, w)
	if resp.Total != 1 || resp.Clients[0].Name != "Acme" {
		t.Errorf("unexpected list %+v", resp)
	}
}

func newEventRouter(store *memStore, pub *recordingPublisher) *gin.Engine {
	r := gin.New()
	h := NewEventHandler(store, store, pub, "event-photos")
	r.POST("/v1/events", h.Create)
	r.GET("/v1/events", h.List)
	r.GET("/v1/events/:id", h.Get)
	r.GET("/v1/events/:id/details", h.Details)
	r.POST("/v1/events/:id/collections", h.AppendCollections)
	return r
}

func TestEvents_CreateValidation(t *testing.T) {
	store := newMemStore()
	client, _ := store.CreateClient(context.Background(), "Acme", "logos/acme.png")
	r := newEventRouter(store, &recordingPublisher{})

	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"created", map[string]any{"name": "Gala", "startDate": start, "endDate": start.Add(4 * time.Hour), "clientId": client.ID}, http.StatusCreated},
		{"duplicate name", map[string]any{"name": "Gala", "startDate": start, "endDate": start.Add(time.Hour), "clientId": client.ID}, http.StatusConflict},
		{"end before start", map[string]any{"name": "Late", "startDate": start, "endDate": start.Add(-time.Hour), "clientId": client.ID}, http.StatusBadRequest},
		{"unknown client", map[string]any{"name": "Orphan", "startDate": start, "endDate": start, "clientId": uuid.New()}, http.StatusNotFound},
		{"missing name", map[string]any{"startDate": start, "endDate": start, "clientId": client.ID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, jsonRequest(http.MethodPost, "/v1/events", tt.body))
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestEvents_AppendCollectionsQueuesImages(t *testing.T) {
	store := newMemStore()
	client, _ := store.CreateClient(context.Background(), "Acme", "logos/acme.png")
	ev := &models.Event{Name: "Zürich Gala", StartDate: time.Now(), EndDate: time.Now(), ClientID: client.ID}
	store.CreateEvent(context.Background(), ev)
	pub := &recordingPublisher{}
	r := newEventRouter(store, pub)

	body := map[string]any{"collections": []map[string]any{
		{"collection_name": "Red Carpet", "images": []map[string]string{{"src_key": "events/g/1.jpg"}, {"src_key": "events/g/2.jpg"}}},
		{"collection_name": "Stage", "collection_folder": "custom/stage", "images": []map[string]string{{"src_key": "events/g/3.jpg"}}},
	}}
	w := serve(r, jsonRequest(http.MethodPost, "/v1/events/"+ev.ID.String()+"/collections", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[dto.AppendCollectionsResponse](t, w)
	if resp.Queued != 3 || len(pub.tasks) != 3 {
		t.Fatalf("expected 3 queued tasks, got %d (%d published)", resp.Queued, len(pub.tasks))
	}
	if resp.Collections[0].Folder != "events/zurich-gala/red-carpet" {
		t.Errorf("unexpected default folder %q", resp.Collections[0].Folder)
	}
	if resp.Collections[1].Folder != "custom/stage" {
		t.Errorf("explicit folder overwritten: %q", resp.Collections[1].Folder)
	}
	if pub.tasks[0].ImageID != resp.Collections[0].Images[0].ImageID || pub.tasks[0].IndexID != "event-photos" {
		t.Errorf("task does not match stored image: %+v", pub.tasks[0])
	}

	stored, _ := store.GetEvent(context.Background(), ev.ID)
	if stored.ImageCount() != 3 {
		t.Errorf("expected 3 stored images, got %d", stored.ImageCount())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/v1/events/"+ev.ID.String()+"/details", nil))
	details := decode[dto.EventDetailsResponse](t, w)
	if details.ImageCount != 3 || details.CollectionCount != 2 || details.Client == nil {
		t.Errorf("unexpected details %+v", details)
	}
}

func TestEvents_AppendCollectionsSurvivesQueueFailure(t *testing.T) {
	store := newMemStore()
	ev := &models.Event{Name: "Gala"}
	store.CreateEvent(context.Background(), ev)
	r := newEventRouter(store, &recordingPublisher{err: errors.New("nats down")})

	body := map[string]any{"collections": []map[string]any{
		{"collection_name": "A", "images": []map[string]string{{"src_key": "k1"}}},
	}}
	w := serve(r, jsonRequest(http.MethodPost, "/v1/events/"+ev.ID.String()+"/collections", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if resp := decode[dto.AppendCollectionsResponse](t, w); resp.Queued != 0 {
		t.Errorf("expected nothing queued, got %d", resp.Queued)
	}
}

func TestEvents_NotFoundAndBadRequest(t *testing.T) {
	r := newEventRouter(newMemStore(), &recordingPublisher{})

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/events/"+uuid.NewString(), nil)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/events/bad/details", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	body := map[string]any{"collections": []map[string]any{
		{"collection_name": "A", "images": []map[string]string{{"src_key": "k"}}},
	}}
	if w := serve(r, jsonRequest(http.MethodPost, "/v1/events/"+uuid.NewString()+"/collections", body)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	empty := map[string]any{"collections": []map[string]any{}}
	if w := serve(r, jsonRequest(http.MethodPost, "/v1/events/"+uuid.NewString()+"/collections", empty)); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty collections, got %d", w.Code)
	}
}

func TestEvents_ListIncludesClient(t *testing.T) {
	store := newMemStore()
	client, _ := store.CreateClient(context.Background(), "Acme", "logos/acme.png")
	store.CreateEvent(context.Background(), &models.Event{Name: "One", ClientID: client.ID})
	store.CreateEvent(context.Background(), &models.Event{Name: "Two", ClientID: client.ID})
	r := newEventRouter(store, &recordingPublisher{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	resp := decode[struct {
		Events []dto.EventResponse `json:"events"`
		Total  int                 `json:"total"`
	}](t, w)
	if resp.Total != 2 || resp.Events[0].Name != "One" || resp.Events[1].Client == nil {
		t.Errorf("unexpected list %+v", resp)
	}
}

func TestEvents_TimestampKeysAreCamelCase(t *testing.T) {
	store := newMemStore()
	client, _ := store.CreateClient(context.Background(), "Acme", "logos/acme.png")
	ev := &models.Event{Name: "Gala", ClientID: client.ID}
	store.CreateEvent(context.Background(), ev)
	r := newEventRouter(store, &recordingPublisher{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/events/"+ev.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string]json.RawMessage](t, w)
	for _, key := range []string{"createdAt", "startDate", "endDate", "clientId", "eventCollections"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing key %q in %s", key, w.Body.String())
		}
	}
	if _, ok := body["created_at"]; ok {
		t.Errorf("unexpected snake_case timestamp in %s", w.Body.String())
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		folder     string
		file       []byte
		wantStatus int
	}{
		{"png to events", "events", pngHeader, http.StatusCreated},
		{"default folder", "", pngHeader, http.StatusCreated},
		{"unknown folder", "secrets", pngHeader, http.StatusBadRequest},
		{"not an image", "logos", []byte("plain text body"), http.StatusUnsupportedMediaType},
		{"no file", "logos", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newMemBlobs()
			r := gin.New()
			r.POST("/v1/uploads", NewUploadHandler(blobs).Upload)

			fields := map[string]string{}
			if tt.folder != "" {
				fields["folder"] = tt.folder
			}
			w := serve(r, multipartRequest(t, "/v1/uploads", fields, tt.file))
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				resp := decode[dto.UploadResponse](t, w)
				if !strings.HasPrefix(resp.Key, "events/") || resp.URL != blobs.URL(resp.Key) {
					t.Errorf("unexpected upload response %+v", resp)
				}
			}
		})
	}
}

func TestReadyz(t *testing.T) {
	r := gin.New()
	h := NewSystemHandler(
		HealthCheck{Name: "postgres", Ping: func(context.Context) error { return nil }},
		HealthCheck{Name: "nats", Ping: func(context.Context) error { return errors.New("disconnected") }},
	)
	r.GET("/readyz", h.Readyz)
	r.GET("/healthz", h.Healthz)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"nats":"disconnected"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
