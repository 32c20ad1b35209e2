package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	sendBuffer     = 32
	writeWait      = 10 * time.Second
	idlePingPeriod = 30 * time.Second
)

type gameUseCase interface {
	NewGame(mode entity.Mode, difficulty entity.Difficulty) (entity.Session, error)
	Move(row, col int) (entity.Session, error)
	State() entity.Session
}

// Server streams controller notifications to every connected client and accepts game commands.
type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	handlers map[string]func(c *client, message *Message) error
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: writeWait,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	server.handlers = map[string]func(*client, *Message) error{
		ActionNewGame: server.handleNewGame,
		ActionMove:    server.handleMove,
		ActionState:   server.handleState,
	}

	return server
}

// ServeHTTP - upgrades the connection and serves it until the client goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	// the stream outlives the HTTP server's read timeout
	if err = conn.SetReadDeadline(time.Time{}); err != nil {
		log.Error("failed to reset read deadline", "error", err)
		_ = conn.Close()
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	that.register(c)

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	go func() {
		defer conn.Close()

		if writeErr := c.writeLoop(); writeErr != nil {
			log.Debug("writer stopped", "error", writeErr)
		}
	}()

	that.readLoop(c)
	that.unregister(c)
}

func (that *Server) readLoop(c *client) {
	log := that.logger.With("method", "readLoop")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			c.sendError(fmt.Errorf("failed to unmarshal message: %w", err))
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			c.sendError(fmt.Errorf("unknown message type %q", message.Type))
			continue
		}

		if err = handler(c, &message); err != nil {
			log.Debug("command rejected", "type", message.Type, "error", err)
			c.sendError(err)
		}
	}
}

func (that *Server) handleNewGame(c *client, message *Message) error {
	var payload newGamePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.game.NewGame(payload.Mode, payload.Difficulty)
	if err != nil {
		return err
	}

	c.sendMessage(TypeState, newStatePayload(session))

	return nil
}

func (that *Server) handleMove(c *client, message *Message) error {
	var payload movePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.game.Move(payload.Row, payload.Col)
	if err != nil {
		return err
	}

	c.sendMessage(TypeState, newStatePayload(session))

	return nil
}

func (that *Server) handleState(c *client, _ *Message) error {
	c.sendMessage(TypeState, newStatePayload(that.game.State()))
	return nil
}

func (that *Server) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c] = struct{}{}
}

func (that *Server) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; ok {
		delete(that.clients, c)
		close(c.send)
	}
}

// broadcast queues the message for every client. Slow clients miss messages instead of stalling the game.
func (that *Server) broadcast(msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "type", msgType, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.clients {
		c.enqueue(data)
	}
}

func (that *Server) OnGameStarted(event tictactoe.GameStarted) {
	payload := startedPayload{GameID: event.GameID, Mode: string(event.Mode)}
	if event.Mode == entity.ModePvComputer {
		payload.Difficulty = string(event.Difficulty)
	}

	that.broadcast(TypeStarted, payload)
}

func (that *Server) OnBoardChanged(event tictactoe.BoardChanged) {
	that.broadcast(TypeBoard, boardPayload{
		GameID: event.GameID,
		Row:    event.Row,
		Col:    event.Col,
		Mark:   event.Mark.String(),
	})
}

func (that *Server) OnCurrentPlayerChanged(event tictactoe.CurrentPlayerChanged) {
	that.broadcast(TypePlayer, playerPayload{GameID: event.GameID, Mark: event.Mark.String()})
}

func (that *Server) OnGameEnded(event tictactoe.GameEnded) {
	that.broadcast(TypeEnded, newEndedPayload(event))
}
