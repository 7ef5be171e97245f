package untis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JameDevOfficial/WebUntisTest/pkg/dateutil"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	clientName     = "untiscal"
)

// Session holds the cookie-backed WebUntis session. It is an explicit
// value on the client; nothing here is process-global.
type Session struct {
	ID         string // JSESSIONID cookie value
	PersonType int
	PersonID   int
}

// Client represents a WebUntis API client
type Client struct {
	baseURL    string
	school     string
	httpClient *http.Client
	logger     *zap.Logger
	session    *Session
}

// NewClient creates a new WebUntis API client
func NewClient(baseURL, school string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		school:  school,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Authenticate opens a session with the scheduling service. The session
// cookie is kept on the client and attached to every subsequent request.
func (c *Client) Authenticate(username, password string) error {
	req := rpcRequest{
		ID:      clientName,
		Method:  "authenticate",
		Params:  authParams{User: username, Password: password, Client: clientName},
		JSONRPC: "2.0",
	}

	var result authResult
	if err := c.doRPC(req, &result); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if result.SessionID == "" {
		return fmt.Errorf("authenticate returned empty session id")
	}

	c.session = &Session{
		ID:         result.SessionID,
		PersonType: result.PersonType,
		PersonID:   result.PersonID,
	}

	c.logger.Info("Untis session opened",
		zap.String("school", c.school),
		zap.Int("person_id", result.PersonID))

	return nil
}

// Logout closes the session. Best effort: a failed logout only logs a
// warning, the server expires the session on its own.
func (c *Client) Logout() {
	if c.session == nil {
		return
	}

	req := rpcRequest{
		ID:      clientName,
		Method:  "logout",
		Params:  struct{}{},
		JSONRPC: "2.0",
	}

	if err := c.doRPC(req, nil); err != nil {
		c.logger.Warn("Logout failed", zap.Error(err))
	} else {
		c.logger.Info("Untis session closed")
	}

	c.session = nil
}

// GetWeeklyData fetches the timetable payload for the week containing
// the given date. The service resolves any date to its week, so one
// call per requested date covers that whole week.
func (c *Client) GetWeeklyData(date time.Time, elementType, elementID int) (*TimetableData, error) {
	if c.session == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	query := url.Values{}
	query.Set("elementType", fmt.Sprintf("%d", elementType))
	query.Set("elementId", fmt.Sprintf("%d", elementID))
	query.Set("date", date.Format("2006-01-02"))
	query.Set("formatId", "2")

	endpoint := fmt.Sprintf("%s/WebUntis/api/public/timetable/weekly/data?%s", c.baseURL, query.Encode())

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		data, err := c.fetchWeeklyOnce(endpoint)
		if err == nil {
			c.logger.Info("Weekly timetable fetched",
				zap.String("date", dateutil.FormatUntisDate(date)),
				zap.Int("element_id", elementID),
				zap.Int("element_count", len(data.Elements)),
				zap.Int("period_count", len(data.Periods(elementID))))
			return data, nil
		}

		// A service-reported error facet is final, retrying cannot help
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("Weekly fetch failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			time.Sleep(time.Second * time.Duration(attempt))
		}
	}

	return nil, fmt.Errorf("weekly fetch failed after %d attempts: %w", defaultRetries, lastErr)
}

// fetchWeeklyOnce performs a single weekly data request
func (c *Client) fetchWeeklyOnce(endpoint string) (*TimetableData, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weekly data request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope weeklyDataResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse weekly data response: %w", err)
	}

	if envelope.Data.Error != nil {
		return nil, envelope.Data.Error
	}
	if envelope.Data.Result == nil {
		return nil, fmt.Errorf("weekly data response carries neither result nor error")
	}

	return &envelope.Data.Result.Data, nil
}

// doRPC performs a JSON-RPC call against the session endpoint
func (c *Client) doRPC(rpcReq rpcRequest, result interface{}) error {
	jsonData, err := json.Marshal(rpcReq)
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/WebUntis/jsonrpc.do?school=%s", c.baseURL, url.QueryEscape(c.school))

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to parse rpc result: %w", err)
		}
	}

	return nil
}

// attachSession adds the session cookie to a request when a session exists
func (c *Client) attachSession(req *http.Request) {
	if c.session != nil {
		req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: c.session.ID})
	}
}
