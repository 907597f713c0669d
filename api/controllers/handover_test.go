package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/internal/handover"
)

type testHandoverService struct {
	listOpenFn   func(ctx context.Context, staffID uuid.UUID) ([]handover.OpenOrderSummary, error)
	recipientsFn func(ctx context.Context, branchID, callerID uuid.UUID) ([]handover.StaffView, error)
	reassignFn   func(ctx context.Context, input handover.ReassignInput) (*handover.ReassignResult, error)
}

func (s *testHandoverService) ListOpenOrders(ctx context.Context, staffID uuid.UUID) ([]handover.OpenOrderSummary, error) {
	if s.listOpenFn != nil {
		return s.listOpenFn(ctx, staffID)
	}
	return nil, nil
}

func (s *testHandoverService) ListEligibleRecipients(ctx context.Context, branchID, callerID uuid.UUID) ([]handover.StaffView, error) {
	if s.recipientsFn != nil {
		return s.recipientsFn(ctx, branchID, callerID)
	}
	return nil, nil
}

func (s *testHandoverService) Reassign(ctx context.Context, input handover.ReassignInput) (*handover.ReassignResult, error) {
	if s.reassignFn != nil {
		return s.reassignFn(ctx, input)
	}
	return &handover.ReassignResult{}, nil
}

func TestHandoverReassignSuccess(t *testing.T) {
	staffID := uuid.New()
	branchID := uuid.New()
	recipientID := uuid.New()
	svc := &testHandoverService{
		reassignFn: func(ctx context.Context, input handover.ReassignInput) (*handover.ReassignResult, error) {
			if input.FromStaffID != staffID {
				t.Fatalf("unexpected from staff %s", input.FromStaffID)
			}
			if input.ToStaffID != recipientID {
				t.Fatalf("unexpected recipient %s", input.ToStaffID)
			}
			if input.BranchID != branchID {
				t.Fatalf("unexpected branch %s", input.BranchID)
			}
			return &handover.ReassignResult{
				Count:     4,
				Recipient: handover.StaffView{ID: recipientID, Name: "Bruno"},
			}, nil
		},
	}

	body := strings.NewReader(`{"toStaffId":"` + recipientID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/handover/reassign", body)
	req = authedRequest(req, staffID, branchID)
	resp := httptest.NewRecorder()
	HandoverReassign(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Count      int `json:"count"`
			NewCaptain struct {
				Name string `json:"name"`
			} `json:"newCaptain"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Count != 4 {
		t.Fatalf("expected count 4, got %d", envelope.Data.Count)
	}
	if envelope.Data.NewCaptain.Name != "Bruno" {
		t.Fatalf("unexpected recipient %q", envelope.Data.NewCaptain.Name)
	}
}

func TestHandoverReassignRequiresRecipient(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/handover/reassign", strings.NewReader(`{}`))
	req = authedRequest(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	HandoverReassign(&testHandoverService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHandoverMyOrdersRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/handover/my-orders", nil)
	resp := httptest.NewRecorder()
	HandoverMyOrders(&testHandoverService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestHandoverStaffPassesScope(t *testing.T) {
	staffID := uuid.New()
	branchID := uuid.New()
	svc := &testHandoverService{
		recipientsFn: func(ctx context.Context, b, c uuid.UUID) ([]handover.StaffView, error) {
			if b != branchID || c != staffID {
				t.Fatalf("unexpected scope branch=%s caller=%s", b, c)
			}
			return []handover.StaffView{{ID: uuid.New(), Name: "Zara"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req = authedRequest(req, staffID, branchID)
	resp := httptest.NewRecorder()
	HandoverStaff(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
