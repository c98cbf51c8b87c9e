package erpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"go.uber.org/zap"
)

// maxResponseSize bounds ECount responses (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	loginPath    = "/OAPI/V2/OAPILogin"
	saveSalePath = "/OAPI/V2/Sale/SaveSale"
	loginSuccess = "00"
	statusOK     = "200"
)

// ECount errors
var (
	ErrEcountNoZone    = errors.New("ecount: zone lookup returned no zone")
	ErrEcountLogin     = errors.New("ecount: login rejected")
	ErrEcountNoSession = errors.New("ecount: login returned no session id")
)

// EcountConfig holds ECount Open API endpoints
type EcountConfig struct {
	// ZoneURL is the zone lookup endpoint
	ZoneURL string
	// BaseURLFormat is the zone API root; %s is replaced by the zone
	BaseURLFormat string
	// LanType is sent as LAN_TYPE at login
	LanType string
	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// EcountGateway sends sales documents through the ECount SaveSale API
type EcountGateway struct {
	config     EcountConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEcountGateway creates an ECount gateway
func NewEcountGateway(config EcountConfig, logger *zap.Logger) *EcountGateway {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.LanType == "" {
		config.LanType = "ko-KR"
	}
	return &EcountGateway{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// ecountSession is a logged-in API session on one zone
type ecountSession struct {
	zone      string
	sessionID string
}

type ecountError struct {
	Message       string `json:"Message"`
	MessageDetail string `json:"MessageDetail"`
}

func (e *ecountError) String() string {
	if e == nil {
		return ""
	}
	if e.MessageDetail != "" {
		return e.Message + " (" + e.MessageDetail + ")"
	}
	return e.Message
}

type zoneResponse struct {
	Status json.Number  `json:"Status"`
	Error  *ecountError `json:"Error"`
	Data   *struct {
		Zone string `json:"ZONE"`
	} `json:"Data"`
}

type loginResponse struct {
	Status json.Number  `json:"Status"`
	Error  *ecountError `json:"Error"`
	Data   *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
		Datas   *struct {
			SessionID string `json:"SESSION_ID"`
		} `json:"Datas"`
	} `json:"Data"`
}

type saleBulk struct {
	BulkDatas erp.Line `json:"BulkDatas"`
}

type saveSaleRequest struct {
	SaleList []saleBulk `json:"SaleList"`
}

type saveSaleResponse struct {
	Status json.Number  `json:"Status"`
	Error  *ecountError `json:"Error"`
	Data   *struct {
		SuccessCnt    json.Number     `json:"SuccessCnt"`
		FailCnt       json.Number     `json:"FailCnt"`
		SlipNos       []string        `json:"SlipNos"`
		ResultDetails json.RawMessage `json:"ResultDetails"`
	} `json:"Data"`
}

// ErpType returns ECOUNT
func (g *EcountGateway) ErpType() erp.ErpType {
	return erp.ErpTypeEcount
}

// SendSalesDocument logs in and submits all lines as one SaveSale call.
// Every failure is reported in the result.
func (g *EcountGateway) SendSalesDocument(ctx context.Context, config *erp.ErpConfig, lines erp.Lines) erp.SendResult {
	if config == nil {
		return erp.SendFailed("ECount configuration is missing")
	}
	if len(lines) == 0 {
		return erp.SendFailed("Sales document has no lines")
	}

	session, err := g.login(ctx, config)
	if err != nil {
		g.logger.Warn("ECount login failed",
			zap.String("tenant_id", config.TenantID.String()),
			zap.String("company_code", config.CompanyCode),
			zap.Error(err))
		return erp.SendFailed("ECount login failed: %v", err)
	}

	return g.saveSale(ctx, session, lines)
}

// TestConnection performs the zone lookup and login without sending anything
func (g *EcountGateway) TestConnection(ctx context.Context, config *erp.ErpConfig) error {
	_, err := g.login(ctx, config)
	return err
}

func (g *EcountGateway) login(ctx context.Context, config *erp.ErpConfig) (*ecountSession, error) {
	zone, err := g.zone(ctx, config.CompanyCode)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := g.postJSON(ctx, g.zoneURL(zone, loginPath, nil), map[string]string{
		"COM_CODE":     config.CompanyCode,
		"USER_ID":      config.UserID,
		"API_CERT_KEY": config.APIKey,
		"LAN_TYPE":     g.config.LanType,
		"ZONE":         zone,
	}, &resp); err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}

	if resp.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrEcountLogin, describe(resp.Status, resp.Error))
	}
	if resp.Data.Code != loginSuccess {
		return nil, fmt.Errorf("%w: [%s] %s", ErrEcountLogin, resp.Data.Code, resp.Data.Message)
	}
	if resp.Data.Datas == nil || strings.TrimSpace(resp.Data.Datas.SessionID) == "" {
		return nil, ErrEcountNoSession
	}

	g.logger.Debug("ECount session opened",
		zap.String("company_code", config.CompanyCode),
		zap.String("zone", zone))
	return &ecountSession{zone: zone, sessionID: resp.Data.Datas.SessionID}, nil
}

func (g *EcountGateway) zone(ctx context.Context, companyCode string) (string, error) {
	var resp zoneResponse
	if err := g.postJSON(ctx, g.config.ZoneURL, map[string]string{"COM_CODE": companyCode}, &resp); err != nil {
		return "", fmt.Errorf("zone request: %w", err)
	}
	if resp.Data == nil || strings.TrimSpace(resp.Data.Zone) == "" {
		return "", fmt.Errorf("%w: %s", ErrEcountNoZone, describe(resp.Status, resp.Error))
	}
	return resp.Data.Zone, nil
}

func (g *EcountGateway) saveSale(ctx context.Context, session *ecountSession, lines erp.Lines) erp.SendResult {
	body := saveSaleRequest{SaleList: make([]saleBulk, len(lines))}
	for i, line := range lines {
		body.SaleList[i] = saleBulk{BulkDatas: line}
	}

	var resp saveSaleResponse
	endpoint := g.zoneURL(session.zone, saveSalePath, url.Values{"SESSION_ID": {session.sessionID}})
	if err := g.postJSON(ctx, endpoint, body, &resp); err != nil {
		g.logger.Warn("ECount SaveSale call failed", zap.Error(err))
		return erp.SendFailed("SaveSale call failed: %v", err)
	}

	if resp.Status.String() != statusOK {
		return erp.SendFailed("SaveSale rejected: %s", describe(resp.Status, resp.Error))
	}
	if resp.Data == nil {
		return erp.SendFailed("SaveSale rejected: response has no Data")
	}
	if failCnt, _ := resp.Data.FailCnt.Int64(); failCnt > 0 {
		details := strings.TrimSpace(string(resp.Data.ResultDetails))
		if details == "" || details == "null" {
			details = "no details"
		}
		return erp.SendFailed("SaveSale failed for %d line(s): %s", failCnt, details)
	}

	slipNo := ""
	if len(resp.Data.SlipNos) > 0 {
		slipNo = resp.Data.SlipNos[0]
	}
	g.logger.Info("ECount SaveSale succeeded",
		zap.String("slip_no", slipNo),
		zap.Int("lines", len(lines)))
	return erp.SendSucceeded(slipNo)
}

func (g *EcountGateway) zoneURL(zone, path string, query url.Values) string {
	endpoint := fmt.Sprintf(g.config.BaseURLFormat, zone) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// postJSON posts body as JSON and decodes the response into out.
// HTTP statuses of 400 and above are errors.
func (g *EcountGateway) postJSON(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func describe(status json.Number, apiErr *ecountError) string {
	if msg := apiErr.String(); msg != "" {
		return fmt.Sprintf("[%s] %s", status, msg)
	}
	return fmt.Sprintf("status %s", status)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ensure EcountGateway implements erp.Gateway
var _ erp.Gateway = (*EcountGateway)(nil)
