package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"playlink/client/internal/rest"
	"playlink/client/internal/tokenstore"
	"playlink/client/logging/authflow"
)

// httpPurpose tags an in-flight REST request so its response routes to the
// right state-machine step.
type httpPurpose int

const (
	httpDiscovery httpPurpose = iota
	httpShortCode
	httpCheckAuth
	httpExchange
	httpRefresh
	httpVerify
)

type shortCodeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"`
	Handle    string `json:"handle"`
}

type checkResponse struct {
	Code string `json:"code"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// beginAuth starts the credential flow: stored tokens go straight to verify,
// otherwise the short-code grant begins.
func (c *Client) beginAuth() {
	creds, ok, err := c.tokens.Load(c.project.AppID, c.project.ProjectVersionID)
	if err != nil {
		c.logger.Printf("token store load failed: %v", err)
	}
	if ok && creds.Auth != "" {
		c.authToken = creds.Auth
		c.refreshToken = creds.Refresh
		if tokenExpired(creds.Auth) && creds.Refresh != "" {
			c.refreshTokens()
			return
		}
		c.authSt = authVerifying
		c.verifyToken()
		return
	}
	c.requestShortCode()
}

// tokenExpired peeks at the bearer token's exp claim without verifying the
// signature. Opaque or claimless tokens report false and go through the
// normal verify round-trip.
func tokenExpired(bearer string) bool {
	raw := strings.TrimPrefix(bearer, "Bearer ")
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < time.Minute
}

func (c *Client) requestShortCode() {
	body, _ := json.Marshal(map[string]string{
		"client_id": c.clientID,
		"scope":     OAuthScope,
	})
	c.issueHTTP(httpShortCode, http.MethodPost, c.apiBase+"/oauth/shortcode", nil, body)
}

func (c *Client) onShortCodeResponse(resp rest.Response) {
	if resp.Err != nil || resp.Status != http.StatusOK {
		c.authFailed("shortcode", resp)
		return
	}
	var parsed shortCodeResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		c.authFailed("shortcode", rest.Response{Err: err})
		return
	}
	c.shortCode = parsed.Code
	c.shortCodeHandle = parsed.Handle
	c.authSt = authShortCodeOutstanding
	c.setInteractivityState(InteractivityShortCodeRequired)
	authflow.ShortCodeIssued(c.runCtx, c.pub, c.tick, authflow.ShortCodePayload{ExpiresIn: parsed.ExpiresIn})

	expiry := time.Duration(parsed.ExpiresIn) * time.Second
	if expiry <= 0 {
		expiry = 2 * time.Minute
	}
	c.timers.Start(timerRefreshShortCode, expiry, c.timerFire(timerRefreshShortCode))
	c.timers.Start(timerCheckAuthStatus, checkAuthInterval, c.timerFire(timerCheckAuthStatus))
}

func (c *Client) checkAuthStatus() {
	if c.authSt != authShortCodeOutstanding || c.shortCodeHandle == "" {
		return
	}
	c.issueHTTP(httpCheckAuth, http.MethodGet, c.apiBase+"/oauth/shortcode/check/"+c.shortCodeHandle, nil, nil)
}

func (c *Client) onCheckAuthResponse(resp rest.Response) {
	if resp.Err != nil {
		c.logger.Printf("short code check failed: %v", resp.Err)
		return
	}
	switch resp.Status {
	case http.StatusOK:
		var parsed checkResponse
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			c.authFailed("exchange_code", rest.Response{Err: err})
			return
		}
		c.timers.Stop(timerCheckAuthStatus)
		c.timers.Stop(timerRefreshShortCode)
		c.authSt = authExchanging
		c.exchangeTokens(parsed.Code)
	case http.StatusNoContent, http.StatusNotFound:
		// Viewer has not entered the code yet.
	default:
		c.logger.Printf("short code check returned status %d", resp.Status)
	}
}

func (c *Client) exchangeTokens(code string) {
	body, _ := json.Marshal(map[string]string{
		"client_id":  c.clientID,
		"code":       code,
		"grant_type": "authorization_code",
	})
	c.issueHTTP(httpExchange, http.MethodPost, c.apiBase+"/oauth/token", nil, body)
}

func (c *Client) onExchangeResponse(resp rest.Response) {
	if !c.acceptTokens("exchange", resp) {
		return
	}
	c.authSt = authHaveTokens
	authflow.ExchangeCompleted(c.runCtx, c.pub, c.tick)
	c.verifyToken()
}

func (c *Client) refreshTokens() {
	if c.refreshToken == "" {
		c.requestShortCode()
		return
	}
	c.authSt = authRefreshing
	body, _ := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"refresh_token": c.refreshToken,
		"grant_type":    "refresh_token",
	})
	c.issueHTTP(httpRefresh, http.MethodPost, c.apiBase+"/oauth/token", nil, body)
}

func (c *Client) onRefreshResponse(resp rest.Response) {
	if resp.Err != nil || resp.Status != http.StatusOK {
		// Refresh grants expire server-side; fall back to a fresh short code.
		authflow.FlowFailed(c.runCtx, c.pub, c.tick, authflow.FailurePayload{
			Step:   "refresh",
			Status: resp.Status,
		})
		c.authToken = ""
		c.refreshToken = ""
		c.requestShortCode()
		return
	}
	if !c.acceptTokens("refresh", resp) {
		return
	}
	c.telemetry.RecordTokenRefresh()
	authflow.TokenRefreshed(c.runCtx, c.pub, c.tick)
	c.verifyToken()
}

// acceptTokens parses a token grant, stores the bearer pair, and persists it.
// Store failures log only.
func (c *Client) acceptTokens(step string, resp rest.Response) bool {
	if resp.Err != nil || resp.Status != http.StatusOK {
		c.authFailed(step, resp)
		return false
	}
	var parsed tokenResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || parsed.AccessToken == "" {
		c.authFailed(step, rest.Response{Err: fmt.Errorf("malformed token response")})
		return false
	}
	c.authToken = "Bearer " + parsed.AccessToken
	c.refreshToken = parsed.RefreshToken
	creds := tokenstore.Credentials{Auth: c.authToken, Refresh: c.refreshToken}
	if err := c.tokens.Save(c.project.AppID, c.project.ProjectVersionID, creds); err != nil {
		c.logger.Printf("token store save failed: %v", err)
	}
	return true
}

// verifyToken probes the interactive host over HTTPS with the websocket
// handshake headers. 400 counts as valid since the host rejects a plain GET
// where it expects an upgrade.
func (c *Client) verifyToken() {
	if c.wsURL == "" {
		c.pendingVerify = true
		c.startDiscovery()
		return
	}
	c.authSt = authVerifying
	url := strings.Replace(c.wsURL, "wss://", "https://", 1)
	url = strings.Replace(url, "ws://", "http://", 1)
	c.issueHTTP(httpVerify, http.MethodGet, url, c.handshakeHeaderMap(), nil)
}

func (c *Client) onVerifyResponse(resp rest.Response) {
	if resp.Err != nil {
		authflow.FlowFailed(c.runCtx, c.pub, c.tick, authflow.FailurePayload{Step: "verify", Error: resp.Err.Error()})
		c.armReconnect()
		return
	}
	switch resp.Status {
	case http.StatusOK, http.StatusBadRequest:
		authflow.TokenVerified(c.runCtx, c.pub, c.tick, authflow.VerifyPayload{Status: resp.Status, Valid: true})
		c.authSt = authHaveTokens
		c.connectSocket()
	case http.StatusUnauthorized:
		authflow.TokenVerified(c.runCtx, c.pub, c.tick, authflow.VerifyPayload{Status: resp.Status, Valid: false})
		c.queueError(ErrorKindTokenInvalid, defaultErrorCode, "access token rejected, refreshing")
		c.refreshTokens()
	default:
		c.authSt = authFailed
		c.queueError(ErrorKindAuthFailure, defaultErrorCode, fmt.Sprintf("token verify returned status %d", resp.Status))
		authflow.FlowFailed(c.runCtx, c.pub, c.tick, authflow.FailurePayload{Step: "verify", Status: resp.Status})
	}
}

func (c *Client) authFailed(step string, resp rest.Response) {
	c.authSt = authFailed
	message := fmt.Sprintf("auth step %s failed", step)
	if resp.Err != nil {
		message = fmt.Sprintf("auth step %s failed: %v", step, resp.Err)
	} else if resp.Status != 0 {
		message = fmt.Sprintf("auth step %s failed with status %d", step, resp.Status)
	}
	c.queueError(ErrorKindAuthFailure, defaultErrorCode, message)
	authflow.FlowFailed(c.runCtx, c.pub, c.tick, authflow.FailurePayload{
		Step:   step,
		Status: resp.Status,
		Error:  errString(resp.Err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ShortCode returns the most recent code the viewer was asked to enter,
// empty before the grant starts.
func (c *Client) ShortCode() string {
	return c.shortCode
}
