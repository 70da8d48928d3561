package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// client serializa as escritas numa conexão (gorilla aceita um writer por vez)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub gerencia conexões WebSocket e assinaturas por leilão.
// AuctionID 0 assina as notificações sem leilão (registro, ownership).
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[uint64]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[uint64]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.AuctionID]; !ok {
				h.subs[msg.AuctionID] = make(map[*client]struct{})
			}
			h.subs[msg.AuctionID][c] = struct{}{}
			h.mu.Unlock()
			_ = c.write(map[string]any{"type": "subscribed", "auctionId": msg.AuctionID})
		case "unsubscribe":
			h.unsubscribe(msg.AuctionID, c)
		case "ping":
			_ = c.write(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(auctionID uint64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[auctionID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, auctionID)
		}
	}
}

// Subscribers retorna quantas conexões assinam o leilão
func (h *Hub) Subscribers(auctionID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionID])
}

// Broadcast envia a atualização para todos os inscritos no leilão correspondente
func (h *Hub) Broadcast(update Update) {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.subs[update.AuctionID]))
	for c := range h.subs[update.AuctionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		return
	}
	for _, c := range conns {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, b)
		c.mu.Unlock()
	}
}
