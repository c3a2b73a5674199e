package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// HTTPLedger is a Ledger backed by an external payment service's HTTP API.
type HTTPLedger struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPLedger creates a ledger client for the given payment service.
func NewHTTPLedger(baseURL, apiKey string, httpClient *http.Client) *HTTPLedger {
	return &HTTPLedger{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type transferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Transfer posts a transfer order and interprets the response. A 422 means
// the ledger could not fund the payout; any other non-2xx status is treated
// as a gateway failure.
func (l *HTTPLedger) Transfer(ctx context.Context, to string, amount int64) error {
	jsonBody, err := json.Marshal(transferRequest{To: to, Amount: amount})
	if err != nil {
		return &TransferError{Reason: "encoding transfer order", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/v1/transfers", strings.NewReader(string(jsonBody)))
	if err != nil {
		return &TransferError{Reason: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return &TransferError{Reason: "sending transfer order", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &TransferError{Reason: "insufficient funds"}
	default:
		return &TransferError{Reason: http.StatusText(resp.StatusCode)}
	}
}
