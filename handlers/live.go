package handlers

import (
	"net/http"
	"time"

	"settisfy/services/booking"
	"settisfy/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LiveBookingHandler upgrades the connection and streams authoritative
// booking snapshots: one on connect, then one per change until the client
// disconnects. Clients render whatever arrives and never advance state
// locally.
type LiveBookingHandler struct {
	Service booking.BookingService
	logger  *zap.Logger
}

func NewLiveBookingHandler(svc booking.BookingService, logger *zap.Logger) *LiveBookingHandler {
	return &LiveBookingHandler{Service: svc, logger: logger}
}

func (h *LiveBookingHandler) StreamBookingHandler(c *gin.Context) {
	bookingID := c.Param("id")

	snapshot, err := h.Service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	updates, err := h.Service.WatchBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Websocket upgrade failed", err.Error())
		return
	}
	defer conn.Close()

	// Reader goroutine: we never expect client messages, but reading is
	// required to process pong frames and detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		h.logger.Warn("Failed to write initial booking snapshot",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(b); err != nil {
				h.logger.Debug("Live booking write failed",
					zap.String("bookingID", bookingID), zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
