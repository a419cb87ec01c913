package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/consulthub/scheduler-api/internal/model"
	"github.com/consulthub/scheduler-api/internal/service"
	"github.com/consulthub/scheduler-api/internal/timeutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTxRunner struct{}

func (stubTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubUserStore struct{}

func (stubUserStore) ActorExists(_ context.Context, id int64) (bool, error) {
	return id <= 10, nil
}

type stubScheduleStore struct {
	nextID int64
	items  map[int64]*model.Schedule
}

func newStubScheduleStore() *stubScheduleStore {
	return &stubScheduleStore{nextID: 1, items: make(map[int64]*model.Schedule)}
}

func (s *stubScheduleStore) FindLiveByGiverAndDate(_ context.Context, giverID int64, date time.Time) ([]*model.Schedule, error) {
	var result []*model.Schedule
	for _, item := range s.items {
		if item.GiverID == giverID && item.Date.Equal(date) && !item.IsDeleted() {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *stubScheduleStore) FindLiveByID(_ context.Context, id int64) (*model.Schedule, error) {
	item, ok := s.items[id]
	if !ok || item.IsDeleted() {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *stubScheduleStore) FindByIDIncludingDeleted(_ context.Context, id int64) (*model.Schedule, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *stubScheduleStore) List(_ context.Context, filter model.ScheduleFilter) ([]*model.Schedule, error) {
	var result []*model.Schedule
	for _, item := range s.items {
		if item.IsDeleted() {
			continue
		}
		if filter.GiverID != nil && item.GiverID != *filter.GiverID {
			continue
		}
		if filter.TakerID != nil && (item.TakerID == nil || *item.TakerID != *filter.TakerID) {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		copied := *item
		result = append(result, &copied)
	}
	return result, nil
}

func (s *stubScheduleStore) InsertBatch(_ context.Context, schedules []*model.Schedule) error {
	for _, schedule := range schedules {
		schedule.ID = s.nextID
		s.nextID++
		copied := *schedule
		s.items[schedule.ID] = &copied
	}
	return nil
}

func (s *stubScheduleStore) Save(_ context.Context, schedule *model.Schedule) error {
	copied := *schedule
	s.items[schedule.ID] = &copied
	return nil
}

func (s *stubScheduleStore) FindElapsedAccepted(_ context.Context, _ time.Time) ([]*model.Schedule, error) {
	return nil, nil
}

func newTestHandler() (*ScheduleHandler, *echo.Echo) {
	validator := service.NewScheduleValidator(timeutil.DefaultRestWindow())
	svc := service.NewScheduleService(stubTxRunner{}, newStubScheduleStore(), stubUserStore{}, validator, zap.NewNop())
	return NewScheduleHandler(svc, zap.NewNop()), echo.New()
}

// testDate дата через неделю, всегда внутри допустимого горизонта
func testDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(dateLayout)
}

func doJSON(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createBody(giverID int64, start, end string) string {
	return fmt.Sprintf(`{
		"schedules": [{"giver_id": %d, "date": %q, "start_time": %q, "end_time": %q}],
		"operator_id": %d,
		"operator_role": "giver"
	}`, giverID, testDate(), start, end, giverID)
}

func createSchedule(t *testing.T, h *ScheduleHandler, e *echo.Echo, giverID int64, start, end string) scheduleResponse {
	t.Helper()

	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(giverID, start, end))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created []scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created, 1)
	return created[0]
}

func TestHandlerCreate(t *testing.T) {
	h, e := newTestHandler()

	created := createSchedule(t, h, e, 1, "09:00", "10:00")

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "available", created.Status)
	assert.Equal(t, "09:00", created.StartTime)
	assert.Equal(t, testDate(), created.Date)
	assert.Equal(t, int64(1), created.CreatedBy)
	assert.Equal(t, "giver", created.CreatedByRole)
}

func TestHandlerCreateConflict(t *testing.T) {
	h, e := newTestHandler()

	createSchedule(t, h, e, 1, "09:00", "10:00")

	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(1, "09:30", "10:30"))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "schedule_conflict", resp.Code)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, int64(1), resp.Conflicts[0].ID)
	assert.Contains(t, resp.Conflicts[0].Display, "09:00~10:00")
}

func TestHandlerCreateValidationError(t *testing.T) {
	h, e := newTestHandler()

	// Конец раньше начала
	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(1, "10:00", "09:00"))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Equal(t, "end_time", resp.Field)
}

func TestHandlerCreateMalformedTime(t *testing.T) {
	h, e := newTestHandler()

	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(1, "9am", "10:00"))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateUnknownRole(t *testing.T) {
	h, e := newTestHandler()

	body := fmt.Sprintf(`{
		"schedules": [{"giver_id": 1, "date": %q, "start_time": "09:00", "end_time": "10:00"}],
		"operator_id": 1,
		"operator_role": "manager"
	}`, testDate())

	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", body)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateUnknownOperator(t *testing.T) {
	h, e := newTestHandler()

	body := fmt.Sprintf(`{
		"schedules": [{"giver_id": 1, "date": %q, "start_time": "09:00", "end_time": "10:00"}],
		"operator_id": 99,
		"operator_role": "giver"
	}`, testDate())

	c, rec := doJSON(e, http.MethodPost, "/api/v1/schedules", body)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGet(t *testing.T) {
	h, e := newTestHandler()

	created := createSchedule(t, h, e, 1, "09:00", "10:00")

	c, rec := doJSON(e, http.MethodGet, "/api/v1/schedules/1", "")
	c.SetPath("/api/v1/schedules/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(created.ID, 10))

	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestHandlerGetNotFound(t *testing.T) {
	h, e := newTestHandler()

	c, rec := doJSON(e, http.MethodGet, "/api/v1/schedules/42", "")
	c.SetPath("/api/v1/schedules/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Code)
}

func TestHandlerList(t *testing.T) {
	h, e := newTestHandler()

	createSchedule(t, h, e, 1, "09:00", "10:00")
	createSchedule(t, h, e, 1, "11:00", "12:00")
	createSchedule(t, h, e, 2, "09:00", "10:00")

	c, rec := doJSON(e, http.MethodGet, "/api/v1/schedules?giver_id=1", "")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestHandlerListInvalidStatus(t *testing.T) {
	h, e := newTestHandler()

	c, rec := doJSON(e, http.MethodGet, "/api/v1/schedules?status=bogus", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdate(t *testing.T) {
	h, e := newTestHandler()

	created := createSchedule(t, h, e, 1, "09:00", "10:00")

	body := `{"note": "moved online", "operator_id": 2, "operator_role": "taker"}`
	c, rec := doJSON(e, http.MethodPatch, "/api/v1/schedules/1", body)
	c.SetPath("/api/v1/schedules/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(created.ID, 10))

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Note)
	assert.Equal(t, "moved online", *got.Note)
	assert.Equal(t, int64(2), got.UpdatedBy)
	assert.Equal(t, "taker", got.UpdatedByRole)
}

func TestHandlerDeleteIdempotent(t *testing.T) {
	h, e := newTestHandler()

	created := createSchedule(t, h, e, 1, "09:00", "10:00")
	target := "/api/v1/schedules/1?operator_id=1&operator_role=giver"

	for i := 0; i < 2; i++ {
		c, rec := doJSON(e, http.MethodDelete, target, "")
		c.SetPath("/api/v1/schedules/:id")
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatInt(created.ID, 10))

		require.NoError(t, h.Delete(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp deleteScheduleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Deleted)
	}

	// После удаления слот недоступен
	c, rec := doJSON(e, http.MethodGet, "/api/v1/schedules/1", "")
	c.SetPath("/api/v1/schedules/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(created.ID, 10))
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDeleteNeverExisted(t *testing.T) {
	h, e := newTestHandler()

	c, rec := doJSON(e, http.MethodDelete, "/api/v1/schedules/42", "")
	c.SetPath("/api/v1/schedules/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp deleteScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Deleted)
}
