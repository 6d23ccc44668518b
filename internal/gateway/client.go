package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattbennet/lentra/internal/ledger"
	"github.com/mattbennet/lentra/internal/logging"
)

// Client submits outbound transfer orders to the external rail over HTTP.
// It satisfies ledger.TransferGateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type orderPayload struct {
	TransferID  string `json:"transfer_id"`
	Beneficiary string `json:"beneficiary"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

func (c *Client) Send(ctx context.Context, order ledger.OutboundOrder) error {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(orderPayload{
		TransferID:  order.TransferID.String(),
		Beneficiary: order.BeneficiaryUserID.String(),
		Amount:      order.Amount,
		Reference:   order.Reference,
	})
	if err != nil {
		return fmt.Errorf("Send: marshal: %w", err)
	}

	url := c.baseURL + "/transfers"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Send: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("Send: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("gateway response received",
		"transfer_id", order.TransferID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Send: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
