package memsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const transportErrorStatus = "transport_error"

// importEnvelope is the wire wrapper the Access API expects around payloads.
type importEnvelope struct {
	Import importMembers `json:"import"`
}

type importMembers struct {
	Members []SyncPayload `json:"members"`
}

// Client delivers sync payloads to the Access API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	sleeper     Sleeper
	logger      Logger
	metrics     Metrics
}

// NewClient creates a delivery client. Only the delivery half of the config
// is required here; the pipeline constructor validates the rest.
func NewClient(config Config) (*Client, error) {
	config = config.withDefaults()
	if config.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrNotConfigured)
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrNotConfigured)
	}

	return &Client{
		endpoint:    config.Endpoint,
		accessToken: config.AccessToken,
		httpClient:  config.HTTPClient,
		sleeper:     config.Sleeper,
		logger:      config.Logger,
		metrics:     config.Metrics,
	}, nil
}

// Deliver serializes the payload and POSTs it to the configured endpoint,
// retrying non-200 responses with a fixed delay up to the attempt budget.
// Transport-level failures (connection error, timeout) terminate the sequence
// immediately with no retry. Errors are returned for observability but the
// caller is expected to absorb them; nothing is retried beyond this method.
func (c *Client) Deliver(ctx context.Context, payload SyncPayload) (Outcome, error) {
	outcome, _, err := c.deliver(ctx, payload)
	return outcome, err
}

// deliver runs the attempt sequence and additionally reports how many HTTP
// attempts were made, for the pipeline's audit record.
func (c *Client) deliver(ctx context.Context, payload SyncPayload) (Outcome, int, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordDeliveryDuration(time.Since(start))
	}()

	body, err := json.Marshal(importEnvelope{Import: importMembers{Members: []SyncPayload{payload}}})
	if err != nil {
		// Payload is a plain value type; marshaling cannot realistically fail.
		c.logger.Error("failed to serialize sync payload",
			Field{Key: "member", Value: payload.MemberCustomerID},
			Field{Key: "error", Value: err.Error()})
		c.metrics.RecordDeliveryOutcome(OutcomeTransportFailure)
		return OutcomeTransportFailure, 0, fmt.Errorf("serialize payload: %w", err)
	}

	for attempt := 0; attempt < maxDeliveryAttempts; attempt++ {
		status, respBody, err := c.post(ctx, body)
		if err != nil {
			c.metrics.RecordDeliveryAttempt(transportErrorStatus)
			c.metrics.RecordDeliveryOutcome(OutcomeTransportFailure)
			c.logger.Error("delivery transport failure",
				Field{Key: "member", Value: payload.MemberCustomerID},
				Field{Key: "attempt", Value: attempt},
				Field{Key: "error", Value: err.Error()})
			return OutcomeTransportFailure, attempt + 1, fmt.Errorf("%w: %v", ErrTransportFailure, err)
		}

		c.metrics.RecordDeliveryAttempt(strconv.Itoa(status))

		if status == http.StatusOK {
			c.metrics.RecordDeliveryOutcome(OutcomeSuccess)
			c.logger.Success("membership record delivered",
				Field{Key: "member", Value: payload.MemberCustomerID},
				Field{Key: "attempt", Value: attempt},
				Field{Key: "response", Value: string(respBody)})
			return OutcomeSuccess, attempt + 1, nil
		}

		c.logger.Warn("delivery rejected, will retry",
			Field{Key: "member", Value: payload.MemberCustomerID},
			Field{Key: "attempt", Value: attempt},
			Field{Key: "status", Value: status},
			Field{Key: "response", Value: string(respBody)})

		if attempt < maxDeliveryAttempts-1 {
			if err := c.sleeper.Sleep(ctx, retryDelay); err != nil {
				c.metrics.RecordDeliveryOutcome(OutcomeTransportFailure)
				c.logger.Error("delivery canceled during retry delay",
					Field{Key: "member", Value: payload.MemberCustomerID},
					Field{Key: "error", Value: err.Error()})
				return OutcomeTransportFailure, attempt + 1, fmt.Errorf("%w: %v", ErrTransportFailure, err)
			}
		}
	}

	c.metrics.RecordDeliveryOutcome(OutcomeExhaustedRetries)
	c.logger.Error("delivery failed after multiple retries",
		Field{Key: "member", Value: payload.MemberCustomerID},
		Field{Key: "attempts", Value: maxDeliveryAttempts})
	return OutcomeExhaustedRetries, maxDeliveryAttempts, ErrRetryExhausted
}

// post issues one HTTP attempt and returns the status code and response body.
func (c *Client) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Access-Token", c.accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		// A response arrived; treat a truncated body as the response outcome
		// rather than a transport failure.
		respBody = nil
	}
	return res.StatusCode, respBody, nil
}
