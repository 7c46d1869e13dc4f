// Package loyverse reads sales receipts from the Loyverse POS API.
package loyverse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.loyverse.com/v1.0"
	pageLimit      = 250
)

// Receipt is one POS receipt. Raw keeps the full payload as returned by the API.
type Receipt struct {
	ReceiptID     string
	ReceiptNumber string
	ReceiptDate   *time.Time
	TotalMoney    float64
	Raw           json.RawMessage
}

type receiptFields struct {
	ID            string          `json:"id"`
	ReceiptID     string          `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	ReceiptDate   string          `json:"receipt_date"`
	CreatedAt     string          `json:"created_at"`
	TotalMoney    json.RawMessage `json:"total_money"`
}

type receiptsPage struct {
	Receipts   []json.RawMessage `json:"receipts"`
	Cursor     string            `json:"cursor"`
	NextCursor string            `json:"next_cursor"`
}

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)
	return &Client{http: http}
}

// FetchReceipts pages through /receipts until the API stops returning a cursor.
func (c *Client) FetchReceipts(ctx context.Context, token string, since *time.Time) ([]Receipt, error) {
	if token == "" {
		return nil, fmt.Errorf("loyverse token is not configured")
	}

	var receipts []Receipt
	cursor := ""
	for {
		params := map[string]string{"limit": strconv.Itoa(pageLimit)}
		if since != nil {
			params["since"] = since.UTC().Format(time.RFC3339)
		}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var page receiptsPage
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParams(params).
			SetResult(&page).
			Get("/receipts")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch loyverse receipts: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("loyverse returned status %d: %s", resp.StatusCode(), resp.String())
		}

		for _, raw := range page.Receipts {
			receipt, err := parseReceipt(raw)
			if err != nil {
				return nil, err
			}
			receipts = append(receipts, receipt)
		}

		cursor = page.Cursor
		if cursor == "" {
			cursor = page.NextCursor
		}
		if cursor == "" {
			return receipts, nil
		}
	}
}

func parseReceipt(raw json.RawMessage) (Receipt, error) {
	var fields receiptFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Receipt{}, fmt.Errorf("failed to decode loyverse receipt: %w", err)
	}

	receipt := Receipt{
		ReceiptID:     receiptIdentifier(fields, raw),
		ReceiptNumber: fields.ReceiptNumber,
		Raw:           raw,
	}
	for _, value := range []string{fields.ReceiptDate, fields.CreatedAt} {
		if value == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			receipt.ReceiptDate = &ts
			break
		}
	}
	if len(fields.TotalMoney) > 0 {
		if total, err := strconv.ParseFloat(string(fields.TotalMoney), 64); err == nil {
			receipt.TotalMoney = total
		}
	}
	return receipt, nil
}

// receiptIdentifier prefers the API ids and falls back to a content hash so
// receipts without ids still dedupe across syncs.
func receiptIdentifier(fields receiptFields, raw json.RawMessage) string {
	for _, candidate := range []string{fields.ID, fields.ReceiptID, fields.ReceiptNumber} {
		if candidate != "" {
			return candidate
		}
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
