package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-api/internal/middleware"
)

func authedRequest(method, target string, body []byte, artistID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, artistID)
	ctx = context.WithValue(ctx, middleware.RoleKey, "artist")
	return req.WithContext(ctx)
}

func TestAddSlotHandlerRejectsBadClock(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(context.Background(), artistID, &CreateScheduleRequest{MinGigDuration: 30}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	body, _ := json.Marshal(AddSlotRequest{DayOfWeek: 2, StartTime: "25:00", EndTime: "23:00"})
	rr := httptest.NewRecorder()
	h.AddSlot(rr, authedRequest(http.MethodPost, "/slots", body, artistID))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error code = %q", out.Error.Code)
	}
	if _, ok := out.Error.Details["start_time"]; !ok {
		t.Errorf("expected start_time detail, got %v", out.Error.Details)
	}
}

func TestAddSlotHandlerRejectsShortWindow(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(context.Background(), artistID, &CreateScheduleRequest{MinGigDuration: 30}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	// Both clocks are well-formed; the window itself is too short
	body, _ := json.Marshal(AddSlotRequest{DayOfWeek: 2, StartTime: "20:00", EndTime: "20:10"})
	rr := httptest.NewRecorder()
	h.AddSlot(rr, authedRequest(http.MethodPost, "/slots", body, artistID))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := out.Error.Details["end_time"]; !ok {
		t.Errorf("expected end_time detail, got %v", out.Error.Details)
	}
}

func TestAddSlotHandlerCreates(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(context.Background(), artistID, &CreateScheduleRequest{MinGigDuration: 30}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	body, _ := json.Marshal(AddSlotRequest{DayOfWeek: 5, StartTime: "22:00", EndTime: "02:00", CrossesMidnight: true})
	rr := httptest.NewRecorder()
	h.AddSlot(rr, authedRequest(http.MethodPost, "/slots", body, artistID))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Data struct {
			DayOfWeek       int    `json:"day_of_week"`
			DurationMinutes int    `json:"duration_minutes"`
			StartTime       string `json:"start_time"`
			IsBooked        bool   `json:"is_booked"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Data.DurationMinutes != 240 {
		t.Errorf("duration = %d, want 240", out.Data.DurationMinutes)
	}
	if out.Data.IsBooked {
		t.Error("new slot must be unbooked")
	}
}

func TestCreateScheduleHandlerConflict(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	artistID := uuid.New()

	body, _ := json.Marshal(CreateScheduleRequest{MinGigDuration: 45})

	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, authedRequest(http.MethodPost, "/", body, artistID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.CreateSchedule(rr, authedRequest(http.MethodPost, "/", body, artistID))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}
