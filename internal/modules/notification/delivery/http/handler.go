package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/middleware"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	commonDto "viralacademy.com/academy/pkg/dto"
	"viralacademy.com/academy/pkg/response"
)

var errRealtimeDisabled = errors.New("realtime notifications need redis")

type NotificationHandler struct {
	service     notification.NotificationService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

// NewNotificationHandler builds the handler. checkOrigin may be nil, in which
// case gorilla's same-origin default applies.
func NewNotificationHandler(service notification.NotificationService, redisClient *redis.Client, checkOrigin func(r *http.Request) bool) *NotificationHandler {
	return &NotificationHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	var page commonDto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetNotifications(c.Request.Context(), middleware.CurrentIdentity(c), page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "notification marked as read")
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "all notifications marked as read")
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// HandleWebSocket relays the caller's redis channel to a websocket until
// either side goes away. The session is resolved from ?token= by middleware.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		response.ResponseError(c, apperror.Unauthenticated(""))
		return
	}
	if h.redisClient == nil {
		response.ResponseError(c, apperror.Internal(errRealtimeDisabled))
		return
	}

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, notification.Channel(identity.ID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		response.ResponseError(c, apperror.Internal(err))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug().Err(err).Str("user_id", identity.ID.String()).Msg("websocket write failed")
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
