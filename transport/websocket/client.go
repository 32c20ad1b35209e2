package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (that *client) enqueue(data []byte) {
	select {
	case that.send <- data:
	default:
	}
}

// sendMessage replies to this client only. Replies go through the same queue as broadcasts,
// so they keep their order relative to notifications.
func (that *client) sendMessage(msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		return
	}

	that.enqueue(data)
}

func (that *client) sendError(err error) {
	that.sendMessage(TypeError, errorPayload{Error: err.Error()})
}

// writeLoop drains the send queue and pings the peer when the connection has been idle.
func (that *client) writeLoop() error {
	ticker := time.NewTicker(idlePingPeriod)
	defer ticker.Stop()

	lastWrite := time.Now()

	for {
		select {
		case data, ok := <-that.send:
			if !ok {
				_ = that.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return nil
			}

			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}

			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingPeriod {
				continue
			}

			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}

			lastWrite = time.Now()
		}
	}
}
