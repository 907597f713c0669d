package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/internal/tickets"
	"github.com/tablemesh/kds-backend/pkg/enums"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/outbox"
)

func TestUpdateItemStatusSuccess(t *testing.T) {
	itemID := uuid.New()
	staffID := uuid.New()
	svc := &testTicketsService{
		updateItemFn: func(ctx context.Context, input tickets.UpdateItemStatusInput) (*tickets.ItemView, error) {
			if input.ItemID != itemID {
				t.Fatalf("unexpected item %s", input.ItemID)
			}
			if input.Status != enums.ItemStatusReady {
				t.Fatalf("unexpected status %s", input.Status)
			}
			if input.Actor == nil || input.Actor.StaffID != staffID {
				t.Fatal("expected actor attribution from claims")
			}
			return &tickets.ItemView{ID: itemID, Status: enums.ItemStatusReady}, nil
		},
	}

	body := strings.NewReader(`{"status":"READY"}`)
	req := httptest.NewRequest(http.MethodPatch, "/order-items/"+itemID.String()+"/status", body)
	req = authedRequest(req, staffID, uuid.New())
	req = addRouteParam(req, "itemId", itemID.String())
	resp := httptest.NewRecorder()
	UpdateItemStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateItemStatusRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/order-items/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"BURNT"}`))
	req = authedRequest(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "itemId", uuid.NewString())
	resp := httptest.NewRecorder()
	UpdateItemStatus(&testTicketsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateItemStatusSurfacesStateConflict(t *testing.T) {
	svc := &testTicketsService{
		updateItemFn: func(ctx context.Context, input tickets.UpdateItemStatusInput) (*tickets.ItemView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal item transition")
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/order-items/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"READY"}`))
	req = authedRequest(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "itemId", uuid.NewString())
	resp := httptest.NewRecorder()
	UpdateItemStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestCreateTicketsSuccess(t *testing.T) {
	orderID := uuid.New()
	branchID := uuid.New()
	svc := &testTicketsService{
		createTicketsFn: func(ctx context.Context, input tickets.CreateTicketsInput, actor *outbox.ActorRef) ([]tickets.TicketView, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order %s", input.OrderID)
			}
			if input.BranchID != branchID {
				t.Fatalf("unexpected branch %s", input.BranchID)
			}
			if len(input.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(input.Items))
			}
			return []tickets.TicketView{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}

	body := strings.NewReader(`{"items":[{"name":"Dosa","qty":2,"station":"KITCHEN"},{"name":"Lassi","qty":1,"station":"BAR"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/tickets", body)
	req = authedRequest(req, uuid.New(), branchID)
	req = addRouteParam(req, "id", orderID.String())
	resp := httptest.NewRecorder()
	CreateTickets(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateTicketsRejectsEmptyItems(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/tickets", strings.NewReader(`{"items":[]}`))
	req = authedRequest(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "id", orderID.String())
	resp := httptest.NewRecorder()
	CreateTickets(&testTicketsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetOrderStatusSuccess(t *testing.T) {
	orderID := uuid.New()
	var gotStatus enums.OrderStatus
	svc := &testTicketsService{
		setOrderStatusFn: func(ctx context.Context, oid uuid.UUID, status enums.OrderStatus, actor *outbox.ActorRef) error {
			gotStatus = status
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"COMPLETED"}`))
	req = authedRequest(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "id", orderID.String())
	resp := httptest.NewRecorder()
	SetOrderStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotStatus != enums.OrderStatusCompleted {
		t.Fatalf("unexpected order status %s", gotStatus)
	}
}

func TestMarkTicketReadyReturnsCount(t *testing.T) {
	ticketID := uuid.New()
	svc := &testTicketsService{
		markAllReadyFn: func(ctx context.Context, tid uuid.UUID, actor *outbox.ActorRef) (int, error) {
			if tid != ticketID {
				t.Fatalf("unexpected ticket %s", tid)
			}
			return 3, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tickets/"+ticketID.String()+"/ready", nil)
	req = authedRequest(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "ticketId", ticketID.String())
	resp := httptest.NewRecorder()
	MarkTicketReady(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Updated int `json:"updated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Updated != 3 {
		t.Fatalf("expected 3 updated, got %d", envelope.Data.Updated)
	}
}
