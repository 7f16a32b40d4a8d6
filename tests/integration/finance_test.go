package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCustomerViaAPI(t *testing.T, ts *TestServer, tenantID uuid.UUID, code string) string {
	t.Helper()

	reqBody := map[string]interface{}{
		"code": code,
		"name": "Customer " + code,
		"type": "company",
	}
	w := ts.Request(http.MethodPost, "/api/v1/crm/customers", reqBody, tenantID)
	require.Equal(t, http.StatusCreated, w.Code, "failed to create customer: %s", w.Body.String())

	var resp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp.Data.(map[string]interface{})["id"].(string)
}

func createTestAccountViaAPI(t *testing.T, ts *TestServer, tenantID uuid.UUID, code, name, accountType string) string {
	t.Helper()

	reqBody := map[string]interface{}{
		"code": code,
		"name": name,
		"type": accountType,
	}
	w := ts.Request(http.MethodPost, "/api/v1/finance/accounts", reqBody, tenantID)
	require.Equal(t, http.StatusCreated, w.Code, "failed to create account: %s", w.Body.String())

	var resp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp.Data.(map[string]interface{})["id"].(string)
}

// TestInvoiceAPI_Lifecycle walks an invoice from draft through payment
func TestInvoiceAPI_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	tenantID := uuid.New()
	ts.DB.CreateTestTenantWithUUID(tenantID)

	customerID := createTestCustomerViaAPI(t, ts, tenantID, "INV-CUST-001")

	var invoiceID string

	t.Run("Create draft invoice with items", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"customer_id": customerID,
			"currency":    "USD",
			"issue_date":  "2026-07-01T00:00:00Z",
			"due_date":    "2026-07-31T00:00:00Z",
			"items": []map[string]interface{}{
				{
					"description": "Consulting services, July",
					"quantity":    40,
					"unit_price":  150,
					"tax_rate":    10,
				},
			},
		}

		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		invoiceID = data["id"].(string)
		assert.Equal(t, "draft", data["status"])
		assert.Equal(t, "6000", data["subtotal"])
		assert.Equal(t, "600", data["tax_total"])
		assert.Equal(t, "6600", data["total"])
		assert.NotEmpty(t, data["number"])
	})

	t.Run("Add item to draft invoice", func(t *testing.T) {
		require.NotEmpty(t, invoiceID)

		reqBody := map[string]interface{}{
			"description": "Travel expenses",
			"quantity":    1,
			"unit_price":  400,
			"tax_rate":    0,
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/items", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "7000", data["total"])
		items := data["items"].([]interface{})
		assert.Equal(t, 2, len(items))
	})

	t.Run("Send invoice", func(t *testing.T) {
		require.NotEmpty(t, invoiceID)

		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/send", nil, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "sent", data["status"])
		assert.NotNil(t, data["sent_at"])
	})

	t.Run("Cannot add items to sent invoice", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"description": "Late addition",
			"quantity":    1,
			"unit_price":  100,
			"tax_rate":    0,
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/items", reqBody, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Partial payment", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"amount": 4000.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/payments", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "partially_paid", data["status"])
		assert.Equal(t, "4000", data["amount_paid"])
		assert.Equal(t, "3000", data["balance_due"])
	})

	t.Run("Overpayment rejected", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"amount": 10000.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/payments", reqBody, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Final payment marks invoice paid", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"amount": 3000.00,
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/payments", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "paid", data["status"])
		assert.Equal(t, "0", data["balance_due"])
		assert.NotNil(t, data["paid_at"])
	})

	t.Run("Paid invoice cannot be cancelled", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/cancel", nil, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

// TestInvoiceAPI_Validation tests invoice validation and edge cases
func TestInvoiceAPI_Validation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	tenantID := uuid.New()
	ts.DB.CreateTestTenantWithUUID(tenantID)

	customerID := createTestCustomerViaAPI(t, ts, tenantID, "VAL-CUST-001")

	t.Run("Create invoice for unknown customer fails", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"customer_id": uuid.New().String(),
			"issue_date":  "2026-07-01T00:00:00Z",
			"due_date":    "2026-07-31T00:00:00Z",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Due date before issue date fails", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"customer_id": customerID,
			"issue_date":  "2026-07-31T00:00:00Z",
			"due_date":    "2026-07-01T00:00:00Z",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Empty draft cannot be sent", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"customer_id": customerID,
			"issue_date":  "2026-07-01T00:00:00Z",
			"due_date":    "2026-07-31T00:00:00Z",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		invoiceID := resp.Data.(map[string]interface{})["id"].(string)

		w = ts.Request(http.MethodPost, "/api/v1/finance/invoices/"+invoiceID+"/send", nil, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Invoice numbers are unique per tenant", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"customer_id": customerID,
			"number":      "INV-FIXED-001",
			"issue_date":  "2026-07-01T00:00:00Z",
			"due_date":    "2026-07-31T00:00:00Z",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.Request(http.MethodPost, "/api/v1/finance/invoices", reqBody, tenantID)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// TestLedgerAPI_JournalEntries tests the double-entry ledger endpoints
func TestLedgerAPI_JournalEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	tenantID := uuid.New()
	ts.DB.CreateTestTenantWithUUID(tenantID)

	cashID := createTestAccountViaAPI(t, ts, tenantID, "1000", "Cash", "asset")
	incomeID := createTestAccountViaAPI(t, ts, tenantID, "4000", "Service Income", "income")
	expenseID := createTestAccountViaAPI(t, ts, tenantID, "6000", "Payroll Expense", "expense")

	var entryID string

	t.Run("Create balanced journal entry", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"entry_date": "2026-07-31T00:00:00Z",
			"memo":       "July service revenue",
			"lines": []map[string]interface{}{
				{"account_id": cashID, "debit": 5000, "credit": 0},
				{"account_id": incomeID, "debit": 0, "credit": 5000},
			},
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries", reqBody, tenantID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		entryID = data["id"].(string)
		assert.Equal(t, "draft", data["status"])
		assert.Equal(t, "5000", data["total_debit"])
		assert.Equal(t, "5000", data["total_credit"])
	})

	t.Run("Unbalanced entry rejected", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"entry_date": "2026-07-31T00:00:00Z",
			"lines": []map[string]interface{}{
				{"account_id": cashID, "debit": 100, "credit": 0},
				{"account_id": incomeID, "debit": 0, "credit": 90},
			},
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries", reqBody, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Post journal entry", func(t *testing.T) {
		require.NotEmpty(t, entryID)

		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries/"+entryID+"/post", nil, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "posted", data["status"])
		assert.NotNil(t, data["posted_at"])
	})

	t.Run("Posted entry cannot be posted again", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries/"+entryID+"/post", nil, tenantID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Trial balance is balanced after posting", func(t *testing.T) {
		// Second posted entry so several accounts carry activity
		reqBody := map[string]interface{}{
			"entry_date": "2026-07-31T00:00:00Z",
			"memo":       "July payroll",
			"auto_post":  true,
			"lines": []map[string]interface{}{
				{"account_id": expenseID, "debit": 3000, "credit": 0},
				{"account_id": cashID, "debit": 0, "credit": 3000},
			},
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries", reqBody, tenantID)
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.Request(http.MethodGet, "/api/v1/finance/reports/trial-balance", nil, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "BALANCED", data["status"])
		assert.Equal(t, data["total_debit"], data["total_credit"])
		assert.NotEmpty(t, data["rows"])
	})

	t.Run("Balance sheet folds earnings into equity", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/finance/reports/balance-sheet", nil, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		// Cash 5000 - 3000 = 2000; earnings 5000 income - 3000 expense = 2000
		assert.Equal(t, "2000", data["total_assets"])
		assert.Equal(t, "2000", data["current_earnings"])
		assert.Equal(t, "2000", data["total_equity"])
	})

	t.Run("Reverse posted entry", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"entry_date": "2026-08-01T00:00:00Z",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/journal-entries/"+entryID+"/reverse", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, entryID, data["reverses_id"])
		assert.Equal(t, "posted", data["status"])
		assert.Equal(t, "5000", data["total_debit"])
	})

	t.Run("Account with activity cannot be deleted", func(t *testing.T) {
		w := ts.Request(http.MethodDelete, "/api/v1/finance/accounts/"+cashID, nil, tenantID)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// TestLedgerAPI_Accounts tests chart of accounts management
func TestLedgerAPI_Accounts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	tenantID := uuid.New()
	ts.DB.CreateTestTenantWithUUID(tenantID)

	accountID := createTestAccountViaAPI(t, ts, tenantID, "1100", "Accounts Receivable", "asset")

	t.Run("Duplicate account code rejected", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"code": "1100",
			"name": "Duplicate",
			"type": "asset",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/accounts", reqBody, tenantID)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Rename account", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"name": "Trade Receivables",
		}
		w := ts.Request(http.MethodPost, "/api/v1/finance/accounts/"+accountID+"/rename", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "Trade Receivables", resp.Data.(map[string]interface{})["name"])
	})

	t.Run("Deactivate and reactivate account", func(t *testing.T) {
		reqBody := map[string]interface{}{"active": false}
		w := ts.Request(http.MethodPut, "/api/v1/finance/accounts/"+accountID+"/active", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, false, resp.Data.(map[string]interface{})["is_active"])

		reqBody = map[string]interface{}{"active": true}
		w = ts.Request(http.MethodPut, "/api/v1/finance/accounts/"+accountID+"/active", reqBody, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Inactive account rejects postings", func(t *testing.T) {
		inactiveID := createTestAccountViaAPI(t, ts, tenantID, "1200", "Dormant", "asset")
		otherID := createTestAccountViaAPI(t, ts, tenantID, "3000", "Owner Equity", "equity")

		reqBody := map[string]interface{}{"active": false}
		w := ts.Request(http.MethodPut, "/api/v1/finance/accounts/"+inactiveID+"/active", reqBody, tenantID)
		require.Equal(t, http.StatusOK, w.Code)

		entryBody := map[string]interface{}{
			"entry_date": "2026-07-31T00:00:00Z",
			"lines": []map[string]interface{}{
				{"account_id": inactiveID, "debit": 100, "credit": 0},
				{"account_id": otherID, "debit": 0, "credit": 100},
			},
		}
		w = ts.Request(http.MethodPost, "/api/v1/finance/journal-entries", entryBody, tenantID)
		assert.True(t, w.Code >= 400, "Expected error status code, got %d", w.Code)
	})

	t.Run("List accounts", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			createTestAccountViaAPI(t, ts, tenantID, fmt.Sprintf("5%03d", i), fmt.Sprintf("Expense %d", i), "expense")
		}

		w := ts.Request(http.MethodGet, "/api/v1/finance/accounts", nil, tenantID)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		data := resp.Data.([]interface{})
		assert.GreaterOrEqual(t, len(data), 6)
	})
}
