package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Latest snapshots flushed on a fixed interval
	poolBuffer map[string]*PoolMessage
	navBuffer  *NavMessage

	mu sync.RWMutex

	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Update intervals
	PoolInterval time.Duration // Default: 500ms
	NavInterval  time.Duration // Default: 500ms

	// Connection limits
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		PoolInterval:     500 * time.Millisecond,
		NavInterval:      500 * time.Millisecond,
		MaxSubscriptions: 50,
		MessageRateLimit: 100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		poolBuffer:  make(map[string]*PoolMessage),
		config:      config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	poolTicker := time.NewTicker(h.config.PoolInterval)
	navTicker := time.NewTicker(h.config.NavInterval)

	defer poolTicker.Stop()
	defer navTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-poolTicker.C:
			h.broadcastPools()

		case <-navTicker.C:
			h.broadcastNav()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		close(client.send)
	}
}

func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding the lock during sends
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// UpdatePool updates the buffered snapshot for a pool
func (h *Hub) UpdatePool(poolID string, pool *PoolMessage) {
	h.mu.Lock()
	h.poolBuffer[poolID] = pool
	h.mu.Unlock()
}

// UpdateNav updates the buffered NAV snapshot
func (h *Hub) UpdateNav(nav *NavMessage) {
	h.mu.Lock()
	h.navBuffer = nav
	h.mu.Unlock()
}

func (h *Hub) broadcastPools() {
	h.mu.RLock()
	pools := make(map[string]*PoolMessage)
	for k, v := range h.poolBuffer {
		pools[k] = v
	}
	h.mu.RUnlock()

	for poolID, pool := range pools {
		channel := "pool:" + poolID
		msg := &WSMessage{
			Type:    "pool",
			Channel: channel,
			Data:    pool,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

func (h *Hub) broadcastNav() {
	h.mu.RLock()
	nav := h.navBuffer
	h.mu.RUnlock()

	if nav == nil {
		return
	}

	msg := &WSMessage{
		Type:    "nav",
		Channel: "nav",
		Data:    nav,
	}
	h.BroadcastToChannel("nav", msg)
}

// BroadcastTrade broadcasts a settled swap to subscribers
func (h *Hub) BroadcastTrade(poolID string, trade *TradeMessage) {
	channel := "trades:" + poolID
	msg := &WSMessage{
		Type:    "trade",
		Channel: channel,
		Data:    trade,
	}
	h.BroadcastToChannel(channel, msg)
}

// BroadcastReward broadcasts a gauge claim to a specific user
func (h *Hub) BroadcastReward(userID string, reward *RewardMessage) {
	channel := "rewards:" + userID
	msg := &WSMessage{
		Type:    "reward",
		Channel: channel,
		Data:    reward,
	}
	h.BroadcastToChannel(channel, msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// PoolMessage represents a pool snapshot update
type PoolMessage struct {
	PoolID       string `json:"pool_id"`
	BaseBalance  string `json:"base_balance"`
	QuoteBalance string `json:"quote_balance"`
	LPSupply     string `json:"lp_supply"`
	Ampl         string `json:"ampl"`
	OraclePrice  string `json:"oracle_price"`
	Version      uint64 `json:"version"`
	Timestamp    int64  `json:"timestamp"`
}

// NavMessage represents a fund NAV update
type NavMessage struct {
	QueenNav    string `json:"queen_nav"`
	BishopNav   string `json:"bishop_nav"`
	RookNav     string `json:"rook_nav"`
	OraclePrice string `json:"oracle_price"`
	Version     uint64 `json:"version"`
	Timestamp   int64  `json:"timestamp"`
}

// TradeMessage represents a settled swap
type TradeMessage struct {
	TradeID     string `json:"trade_id"`
	PoolID      string `json:"pool_id"`
	Side        string `json:"side"` // "buy" or "sell"
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
	Price       string `json:"price"`
	Timestamp   int64  `json:"timestamp"`
}

// RewardMessage represents a gauge reward claim
type RewardMessage struct {
	Claimer   string `json:"claimer"`
	PoolID    string `json:"pool_id"`
	Reward    string `json:"reward"`
	Bonus     string `json:"bonus"`
	Timestamp int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	userID := r.URL.Query().Get("user_id")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, userID, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
