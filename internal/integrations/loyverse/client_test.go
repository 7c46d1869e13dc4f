package loyverse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReceipts_FollowsCursor(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/receipts", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		assert.Equal(t, "2024-03-01T00:00:00Z", r.URL.Query().Get("since"))
		calls = append(calls, r.URL.Query().Get("cursor"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"receipts": []map[string]interface{}{
					{"receipt_number": "1-1001", "receipt_date": "2024-03-02T10:00:00Z", "total_money": 45.5},
				},
				"cursor": "page2",
			})
		case "page2":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"receipts": []map[string]interface{}{
					{"id": "abc", "receipt_number": "1-1002", "total_money": 12},
				},
			})
		}
	}))
	defer server.Close()

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	receipts, err := NewClient(server.URL).FetchReceipts(context.Background(), "tok", &since)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "page2"}, calls)
	require.Len(t, receipts, 2)
	assert.Equal(t, "1-1001", receipts[0].ReceiptID)
	assert.Equal(t, 45.5, receipts[0].TotalMoney)
	require.NotNil(t, receipts[0].ReceiptDate)
	assert.Equal(t, 2, receipts[0].ReceiptDate.Day())
	assert.Equal(t, "abc", receipts[1].ReceiptID)
	assert.Equal(t, "1-1002", receipts[1].ReceiptNumber)
}

func TestFetchReceipts_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED"}]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchReceipts(context.Background(), "bad", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchReceipts_RequiresToken(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0").FetchReceipts(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestReceiptIdentifier_HashFallback(t *testing.T) {
	raw := json.RawMessage(`{"note":"no ids"}`)
	first, err := parseReceipt(raw)
	require.NoError(t, err)
	second, err := parseReceipt(raw)
	require.NoError(t, err)

	assert.Len(t, first.ReceiptID, 64)
	assert.Equal(t, first.ReceiptID, second.ReceiptID)
}
