package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/salespoint/pos-backend/internal/common"
	"github.com/salespoint/pos-backend/internal/resilience"
)

// HTTPProcessor posts completed sales to the back-office order endpoint.
// The resilience client retries transport failures and 5xx responses within
// the single gated submission; the circuit breaker sheds load when the back
// office is down.
type HTTPProcessor struct {
	Client  resilience.HTTPClient
	BaseURL string
}

// Process submits the transaction and decodes the processor's receipt. The
// sale id doubles as the idempotency key so a retried request can never
// record the sale twice.
func (p *HTTPProcessor) Process(ctx context.Context, tx Transaction) (Receipt, error) {
	if p == nil || strings.TrimSpace(p.BaseURL) == "" {
		return Receipt{}, errors.New("order processor endpoint not configured")
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode transaction: %w", err)
	}
	url := strings.TrimRight(p.BaseURL, "/") + "/sales"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", tx.SaleID.String())

	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return Receipt{}, fmt.Errorf("order processor: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, common.NewAppError("PROCESSOR_REJECTED", "order processor refused the sale", http.StatusBadGateway,
			fmt.Errorf("order processor returned %s: %s", resp.Status, strings.TrimSpace(string(snippet))))
	}
	var out struct {
		Data Receipt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return out.Data, nil
}
