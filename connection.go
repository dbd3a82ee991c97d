package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"playlink/client/internal/rest"
	"playlink/client/logging"
	"playlink/client/logging/network"
)

type discoveryHost struct {
	Address string `json:"address"`
}

// startDiscovery fetches the interactive host list. Failure is not fatal: a
// previously cached address keeps reconnects alive.
func (c *Client) startDiscovery() {
	if c.connSt == connDiscovering {
		return
	}
	c.connSt = connDiscovering
	c.issueHTTP(httpDiscovery, http.MethodGet, c.apiBase+"/interactive/hosts", nil, nil)
}

func (c *Client) onDiscoveryResponse(resp rest.Response) {
	c.connSt = connIdle
	if resp.Err != nil || resp.Status != http.StatusOK {
		message := fmt.Sprintf("host discovery failed with status %d", resp.Status)
		if resp.Err != nil {
			message = fmt.Sprintf("host discovery failed: %v", resp.Err)
		}
		c.queueError(ErrorKindDiscoveryFailure, defaultErrorCode, message)
		network.Discovery(c.runCtx, c.pub, c.tick, network.DiscoveryPayload{Error: message})
		if c.wsURL == "" {
			c.pendingVerify = false
			return
		}
	} else {
		var hosts []discoveryHost
		if err := json.Unmarshal(resp.Body, &hosts); err != nil || len(hosts) == 0 || hosts[0].Address == "" {
			c.queueError(ErrorKindDiscoveryFailure, defaultErrorCode, "host discovery returned no usable address")
			network.Discovery(c.runCtx, c.pub, c.tick, network.DiscoveryPayload{Error: "no usable address"})
			if c.wsURL == "" {
				c.pendingVerify = false
				return
			}
		} else {
			c.wsURL = hosts[0].Address
			network.Discovery(c.runCtx, c.pub, c.tick, network.DiscoveryPayload{Address: c.wsURL})
		}
	}

	if c.pendingVerify {
		c.pendingVerify = false
		c.verifyToken()
	}
}

func (c *Client) handshakeHeader() http.Header {
	header := http.Header{}
	header.Set("Authorization", c.authToken)
	header.Set("X-Interactive-Version", c.project.ProjectVersionID)
	header.Set("X-Protocol-Version", ProtocolVersion)
	if c.project.ShareCode != "" {
		header.Set("X-Interactive-Sharecode", c.project.ShareCode)
	}
	return header
}

func (c *Client) handshakeHeaderMap() map[string]string {
	out := make(map[string]string, 4)
	for k, v := range c.handshakeHeader() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// connectSocket opens the websocket once per outage. pendingConnect gates
// parallel opens; connected gates idempotent re-entry.
func (c *Client) connectSocket() {
	if c.pendingConnect || c.connected {
		return
	}
	if c.wsURL == "" {
		c.pendingVerify = true
		c.startDiscovery()
		return
	}
	c.pendingConnect = true
	c.connSt = connConnecting
	c.transport.Open(c.wsURL, c.handshakeHeader())
}

func (c *Client) onSocketOpened() {
	c.pendingConnect = false
	c.connected = true
	c.connSt = connOpen
	c.timers.Stop(timerReconnect)
	network.SocketOpened(c.runCtx, c.pub, c.tick, c.wsURL)
}

func (c *Client) onSocketError(message string) {
	network.SocketError(c.runCtx, c.pub, c.tick, message)
	if c.disposed {
		return
	}
	c.pendingConnect = false
	c.connected = false
	c.queueError(ErrorKindTransportBroken, defaultErrorCode, message)
	c.setInteractivityState(InteractivityDisabled)
	c.armReconnect()
}

func (c *Client) onSocketClosed(code int, reason string) {
	c.pendingConnect = false
	c.connected = false
	fatal := code == CloseProjectNotAccessible || code == CloseVersionNotFound || code == CloseDuplicateSession
	network.SocketClosed(c.runCtx, c.pub, c.tick, network.ClosePayload{Code: code, Reason: reason}, fatal)
	if c.disposed {
		return
	}

	switch code {
	case CloseProjectNotAccessible:
		c.connSt = connIdle
		c.queueError(ErrorKindProjectInaccessible, code,
			fmt.Sprintf("project not accessible (close code %d)", code))
	case CloseVersionNotFound:
		c.connSt = connIdle
		c.queueError(ErrorKindProjectInaccessible, code,
			fmt.Sprintf("interactive version not found or no access (close code %d)", code))
	case CloseDuplicateSession:
		c.connSt = connIdle
		c.queueError(ErrorKindDuplicateSession, code,
			fmt.Sprintf("another session is already connected (close code %d)", code))
	default:
		c.queueError(ErrorKindTransportBroken, code,
			fmt.Sprintf("connection closed (code %d): %s", code, reason))
		// Input must pause while the transport is down; the model refetch
		// after the next hello and the service's onReady re-enable it.
		c.setInteractivityState(InteractivityDisabled)
		c.armReconnect()
	}
}

// armReconnect enters backoff. The timer fires verifyToken rather than a
// blind re-open since credentials may have expired during the outage.
func (c *Client) armReconnect() {
	if c.disposed {
		return
	}
	c.connSt = connBackoff
	c.telemetry.RecordReconnect()
	c.timers.Start(timerReconnect, reconnectInterval, c.timerFire(timerReconnect))
	network.ReconnectArmed(c.runCtx, c.pub, c.tick, reconnectInterval.Milliseconds())
}

// handleTimer runs on the consumer thread for every timer tick drained from
// the pump queue.
func (c *Client) handleTimer(name string) {
	switch name {
	case timerCheckAuthStatus:
		c.checkAuthStatus()
	case timerRefreshShortCode:
		// The viewer never entered the old code; grant a fresh one.
		c.requestShortCode()
	case timerReconnect:
		c.timers.Stop(timerReconnect)
		c.verifyToken()
	default:
		c.logProtocol("timer.unknown", logging.SeverityDebug, map[string]any{"name": name})
	}
}

// timerFire adapts a timer callback into a pump enqueue; the work happens on
// the next DoWork pass.
func (c *Client) timerFire(name string) func() {
	return func() {
		c.pump.push(timerItem{name: name})
	}
}

// issueHTTP registers the request purpose then hands the call to the REST
// worker. The response comes back through the pump as an httpResponseItem.
func (c *Client) issueHTTP(purpose httpPurpose, method, url string, headers map[string]string, body []byte) {
	requestID := rest.NewRequestID()
	c.pendingHTTP[requestID] = purpose
	c.rest.Do(requestID, method, url, headers, body)
}

func (c *Client) handleHTTPResponse(resp rest.Response) {
	purpose, ok := c.pendingHTTP[resp.RequestID]
	if !ok {
		c.logger.Printf("response for unknown request %s dropped", resp.RequestID)
		return
	}
	delete(c.pendingHTTP, resp.RequestID)

	switch purpose {
	case httpDiscovery:
		c.onDiscoveryResponse(resp)
	case httpShortCode:
		c.onShortCodeResponse(resp)
	case httpCheckAuth:
		c.onCheckAuthResponse(resp)
	case httpExchange:
		c.onExchangeResponse(resp)
	case httpRefresh:
		c.onRefreshResponse(resp)
	case httpVerify:
		c.onVerifyResponse(resp)
	}
}
