package api

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

// validCreate returns a minimal valid CreateExpenseRequest.
func validCreate() *CreateExpenseRequest {
	return &CreateExpenseRequest{
		Description: "test",
		Value:       10.0,
		Date:        "2024-04-15T10:38:54.000Z",
	}
}

func TestValidateCreateExpense(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(r *CreateExpenseRequest)
		wantErr   bool
		wantField string
	}{
		{"valid request accepted", func(r *CreateExpenseRequest) {}, false, ""},
		{"date-only accepted", func(r *CreateExpenseRequest) { r.Date = "2024-04-12" }, false, ""},
		{"epoch millis accepted", func(r *CreateExpenseRequest) { r.Date = float64(1713177534000) }, false, ""},
		{"empty description", func(r *CreateExpenseRequest) { r.Description = "" }, true, "description"},
		{"numeric description", func(r *CreateExpenseRequest) { r.Description = 2.0 }, true, "description"},
		{"missing description", func(r *CreateExpenseRequest) { r.Description = nil }, true, "description"},
		{"long description", func(r *CreateExpenseRequest) { r.Description = strings.Repeat("x", 192) }, true, "description"},
		{"negative value", func(r *CreateExpenseRequest) { r.Value = -1.0 }, true, "value"},
		{"zero value", func(r *CreateExpenseRequest) { r.Value = 0.0 }, true, "value"},
		{"string value", func(r *CreateExpenseRequest) { r.Value = "4.24" }, true, "value"},
		{"missing value", func(r *CreateExpenseRequest) { r.Value = nil }, true, "value"},
		{"future date", func(r *CreateExpenseRequest) { r.Date = "2055-04-23" }, true, "date"},
		{"non-date", func(r *CreateExpenseRequest) { r.Date = "test" }, true, "date"},
		{"missing date", func(r *CreateExpenseRequest) { r.Date = nil }, true, "date"},
		{"boolean date", func(r *CreateExpenseRequest) { r.Date = true }, true, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.modify(req)
			in, apiErr := ValidateCreateExpense(req, testNow)
			if tt.wantErr {
				if apiErr == nil {
					t.Fatalf("expected error for field %q, got nil", tt.wantField)
				}
				if apiErr.Code != CodeInvalidRequest {
					t.Errorf("Code = %d, want %d", apiErr.Code, CodeInvalidRequest)
				}
				if apiErr.Errors[0].Field != tt.wantField {
					t.Errorf("field = %q, want %q", apiErr.Errors[0].Field, tt.wantField)
				}
				return
			}
			if apiErr != nil {
				t.Fatalf("unexpected error: %v", apiErr)
			}
			if in.Description != "test" || in.Value != 10 {
				t.Errorf("parsed input = %+v", in)
			}
		})
	}
}

func TestValidateCreateExpense_ReportsAllFields(t *testing.T) {
	_, apiErr := ValidateCreateExpense(&CreateExpenseRequest{}, testNow)
	if apiErr == nil {
		t.Fatal("expected error")
	}
	if len(apiErr.Errors) != 3 {
		t.Errorf("len(Errors) = %d, want 3", len(apiErr.Errors))
	}
}

func TestValidateUpdateExpense(t *testing.T) {
	t.Run("only description", func(t *testing.T) {
		p, apiErr := ValidateUpdateExpense(&UpdateExpenseRequest{Description: "test"}, testNow)
		if apiErr != nil {
			t.Fatalf("unexpected error: %v", apiErr)
		}
		if p.Description == nil || *p.Description != "test" {
			t.Errorf("Description = %v", p.Description)
		}
		if p.Value != nil || p.Date != nil {
			t.Error("absent fields must stay nil")
		}
	})

	t.Run("only date", func(t *testing.T) {
		p, apiErr := ValidateUpdateExpense(&UpdateExpenseRequest{Date: "2024-04-12T00:00:00.000Z"}, testNow)
		if apiErr != nil {
			t.Fatalf("unexpected error: %v", apiErr)
		}
		want := time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)
		if p.Date == nil || !p.Date.Equal(want) {
			t.Errorf("Date = %v, want %v", p.Date, want)
		}
	})

	t.Run("empty body is valid", func(t *testing.T) {
		p, apiErr := ValidateUpdateExpense(&UpdateExpenseRequest{}, testNow)
		if apiErr != nil {
			t.Fatalf("unexpected error: %v", apiErr)
		}
		if !p.Empty() {
			t.Error("expected empty patch")
		}
	})

	bad := []struct {
		name string
		req  UpdateExpenseRequest
	}{
		{"empty description", UpdateExpenseRequest{Description: ""}},
		{"numeric description", UpdateExpenseRequest{Description: 123.0}},
		{"negative value", UpdateExpenseRequest{Value: -10.0}},
		{"string value", UpdateExpenseRequest{Value: "test"}},
		{"future date", UpdateExpenseRequest{Date: "2055-04-12"}},
		{"non-date", UpdateExpenseRequest{Date: "teste"}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, apiErr := ValidateUpdateExpense(&req, testNow); apiErr == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpensePatchApply(t *testing.T) {
	desc := "new"
	e := Expense{ID: 3, Description: "old", Value: 4.24, UserID: 1}
	got := ExpensePatch{Description: &desc}.Apply(e)
	if got.Description != "new" || got.Value != 4.24 || got.ID != 3 {
		t.Errorf("Apply = %+v", got)
	}
	if e.Description != "old" {
		t.Error("Apply must not mutate the original")
	}
}
