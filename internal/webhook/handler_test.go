package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeLeadActions struct {
	qualified  []uuid.UUID
	followUps  []uuid.UUID
	assigned   []uuid.UUID
	assignedBy string
}

func (f *fakeLeadActions) MarkQualified(_ context.Context, leadID uuid.UUID) error {
	f.qualified = append(f.qualified, leadID)
	return nil
}

func (f *fakeLeadActions) ScheduleFollowUp(_ context.Context, leadID uuid.UUID, _ transport.ScheduleFollowUpRequest) (*transport.FollowUpResponse, error) {
	f.followUps = append(f.followUps, leadID)
	return &transport.FollowUpResponse{}, nil
}

func (f *fakeLeadActions) AssignManually(_ context.Context, leadID, _ uuid.UUID, assignedBy string) (*transport.AssignmentResponse, error) {
	f.assigned = append(f.assigned, leadID)
	f.assignedBy = assignedBy
	return &transport.AssignmentResponse{}, nil
}

func newTestRouter(leads *fakeLeadActions, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("development")
	h := NewHandler(leads, validator.New(), log)

	engine := gin.New()
	group := engine.Group("/webhook")
	group.Use(TokenAuthMiddleware(token))
	group.POST("/agent", h.HandleAgentCallback)
	return engine
}

func postCallback(t *testing.T, engine *gin.Engine, token string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/agent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Agent-Token", token)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAgentCallback_RejectsMissingToken(t *testing.T) {
	engine := newTestRouter(&fakeLeadActions{}, "shared-secret")

	rec := postCallback(t, engine, "", map[string]any{
		"leadId": uuid.New().String(),
		"action": "qualified",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAgentCallback_RejectsWhenUnconfigured(t *testing.T) {
	engine := newTestRouter(&fakeLeadActions{}, "")

	rec := postCallback(t, engine, "anything", map[string]any{
		"leadId": uuid.New().String(),
		"action": "qualified",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAgentCallback_QualifiesLead(t *testing.T) {
	leads := &fakeLeadActions{}
	engine := newTestRouter(leads, "shared-secret")

	leadID := uuid.New()
	rec := postCallback(t, engine, "shared-secret", map[string]any{
		"leadId": leadID.String(),
		"action": "qualified",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if len(leads.qualified) != 1 || leads.qualified[0] != leadID {
		t.Fatalf("lead not qualified: %v", leads.qualified)
	}
}

func TestAgentCallback_AssignRequiresDealer(t *testing.T) {
	leads := &fakeLeadActions{}
	engine := newTestRouter(leads, "shared-secret")

	rec := postCallback(t, engine, "shared-secret", map[string]any{
		"leadId": uuid.New().String(),
		"action": "assign",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(leads.assigned) != 0 {
		t.Fatal("assign should not run without a dealer id")
	}
}

func TestAgentCallback_AssignRecordsAgentActor(t *testing.T) {
	leads := &fakeLeadActions{}
	engine := newTestRouter(leads, "shared-secret")

	rec := postCallback(t, engine, "shared-secret", map[string]any{
		"leadId":   uuid.New().String(),
		"action":   "assign",
		"dealerId": uuid.New().String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if leads.assignedBy != "agent" {
		t.Fatalf("assignedBy = %q, want agent", leads.assignedBy)
	}
}
