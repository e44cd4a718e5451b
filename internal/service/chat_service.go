package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/observability"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

const chatSendBufferSize = 32

// Websocket event types.
const (
	EventNewMessage        = "new_message"
	EventMessageError      = "message_error"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventUserOnline        = "user_online"
	EventUserOffline       = "user_offline"
)

var (
	// ErrChatNotAllowed indicates the conversation is not backed by an
	// accepted swap request the caller participates in.
	ErrChatNotAllowed = errors.New("chat requires an accepted swap request between both users")
	// ErrEmptyMessage indicates the message had no text left after
	// sanitization.
	ErrEmptyMessage = errors.New("message must contain text")
)

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID   uint
	UserName string
	Context  context.Context
}

// ChatService manages conversations, message delivery and websocket
// connections.
type ChatService interface {
	SendMessage(ctx context.Context, senderID uint, req dto.ChatSendRequest) (dto.ChatMessageResponse, error)
	History(ctx context.Context, userID, swapRequestID uint) ([]dto.ChatMessageResponse, error)
	Conversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error)
	UnreadCount(ctx context.Context, userID uint) (dto.UnreadCountResponse, error)
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	Start(ctx context.Context)
}

type chatService struct {
	chats       repository.ChatMessageRepository
	swaps       repository.SwapRequestRepository
	redis       *redis.Client
	natsConn    *nats.Conn
	channel     string
	natsSubject string
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	hub         *chatHub
	presence    *presenceRegistry
	nodeID      string
}

// chatFanoutEvent crosses node boundaries through redis and NATS. Source
// suppresses the loop back to the publishing node.
type chatFanoutEvent struct {
	Source string                `json:"source"`
	Rooms  []string              `json:"rooms"`
	All    bool                  `json:"all,omitempty"`
	Event  dto.ChatOutboundEvent `json:"event"`
	SentAt time.Time             `json:"sent_at"`
}

// NewChatService constructs the chat service. redisClient and natsConn may
// be nil; cross-node fanout is then disabled.
func NewChatService(chats repository.ChatMessageRepository, swaps repository.SwapRequestRepository, redisClient *redis.Client, natsConn *nats.Conn, channelBase string, validate *validator.Validate, logger zerolog.Logger) ChatService {
	channel := ""
	natsSubject := ""
	if channelBase != "" {
		channel = channelBase + ":chat"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &chatService{
		chats:       chats,
		swaps:       swaps,
		redis:       redisClient,
		natsConn:    natsConn,
		channel:     channel,
		natsSubject: natsSubject,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "chat_service").Logger(),
		tracer:      otel.Tracer("github.com/skillswap-labs/skillswap-api/internal/service/chat"),
		hub:         newChatHub(logger),
		presence:    newPresenceRegistry(),
		nodeID:      uuid.NewString(),
	}
}

func (s *chatService) Start(ctx context.Context) {
	if s.redis != nil && s.channel != "" {
		go s.consumeRedis(ctx)
	}
	if s.natsConn != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *chatService) SendMessage(ctx context.Context, senderID uint, req dto.ChatSendRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(
		attribute.Int64("chat.swap_request_id", int64(req.SwapRequestID)),
		attribute.Int64("chat.sender_id", int64(senderID)),
	))
	defer span.End()

	request, err := s.acceptedRequestFor(ctx, req.SwapRequestID, senderID)
	if err != nil {
		return dto.ChatMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if clean == "" {
		return dto.ChatMessageResponse{}, ErrEmptyMessage
	}

	message := models.ChatMessage{
		SwapRequestID: request.ID,
		FromUserID:    senderID,
		ToUserID:      request.OtherParty(senderID),
		Message:       clean,
	}

	if err := s.chats.Create(ctx, &message); err != nil {
		span.RecordError(err)
		return dto.ChatMessageResponse{}, err
	}

	observability.ChatMessages().WithLabelValues("local").Inc()

	response := dto.NewChatMessageResponse(message)
	event := dto.ChatOutboundEvent{
		Type:          EventNewMessage,
		SwapRequestID: request.ID,
		UserID:        senderID,
		Message:       &response,
	}

	rooms := s.conversationRooms(ctx, request)
	s.hub.broadcast(rooms, event, nil)
	s.publish(ctx, chatFanoutEvent{Rooms: rooms, Event: event})

	return response, nil
}

func (s *chatService) History(ctx context.Context, userID, swapRequestID uint) ([]dto.ChatMessageResponse, error) {
	request, err := s.acceptedRequestFor(ctx, swapRequestID, userID)
	if err != nil {
		return nil, err
	}

	ids, err := s.pairRequestIDs(ctx, userID, request.OtherParty(userID))
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.ListByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := s.chats.MarkReadInRequests(ctx, ids, userID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to mark messages read")
	}

	responses := dto.NewChatMessageResponseSlice(messages)
	for i := range responses {
		if responses[i].ToUserID == userID {
			responses[i].IsRead = true
		}
	}
	return responses, nil
}

func (s *chatService) Conversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error) {
	accepted, err := s.swaps.AcceptedForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type group struct {
		other    models.User
		requests []models.SwapRequest
	}

	order := make([]uint, 0)
	groups := make(map[uint]*group)
	for _, request := range accepted {
		otherID := request.OtherParty(userID)
		entry, exists := groups[otherID]
		if !exists {
			other := request.ToUser
			if request.ToUserID == userID {
				other = request.FromUser
			}
			entry = &group{other: other}
			groups[otherID] = entry
			order = append(order, otherID)
		}
		entry.requests = append(entry.requests, request)
	}

	conversations := make([]dto.ConversationResponse, 0, len(groups))
	for _, otherID := range order {
		entry := groups[otherID]

		ids := make([]uint, 0, len(entry.requests))
		for _, request := range entry.requests {
			ids = append(ids, request.ID)
		}

		messages, err := s.chats.ListByRequests(ctx, ids)
		if err != nil {
			return nil, err
		}

		unread, err := s.chats.UnreadCountInRequests(ctx, ids, userID)
		if err != nil {
			return nil, err
		}

		conversation := dto.ConversationResponse{
			SwapRequestID:    ids[0],
			OtherUser:        dto.NewAuthUserResponse(entry.other),
			OtherUserAvatar:  entry.other.Profile.Avatar,
			UnreadCount:      unread,
			Skills:           conversationSkills(entry.requests),
			SwapRequestCount: len(entry.requests),
		}

		if len(messages) > 0 {
			last := messages[len(messages)-1]
			conversation.LastMessage = &dto.ConversationLastMessage{
				Text:      last.Message,
				FromMe:    last.FromUserID == userID,
				Timestamp: last.CreatedAt,
			}
		}

		conversations = append(conversations, conversation)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversationTime(conversations[i]).After(conversationTime(conversations[j]))
	})

	return conversations, nil
}

func (s *chatService) UnreadCount(ctx context.Context, userID uint) (dto.UnreadCountResponse, error) {
	count, err := s.chats.UnreadCount(ctx, userID)
	if err != nil {
		return dto.UnreadCountResponse{}, err
	}
	return dto.UnreadCountResponse{Count: count}, nil
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan dto.ChatOutboundEvent
	rooms   map[string]struct{}
	userID  uint
	name    string
	service *chatService
	baseCtx context.Context
	closed  chan struct{}
	once    sync.Once
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan dto.ChatOutboundEvent, chatSendBufferSize),
		rooms:   make(map[string]struct{}),
		userID:  opts.UserID,
		name:    opts.UserName,
		service: s,
		baseCtx: baseCtx,
		closed:  make(chan struct{}),
	}

	s.hub.join(client, userRoomName(opts.UserID))
	observability.ChatConnections().Inc()

	if s.presence.Connect(opts.UserID) {
		s.announcePresence(baseCtx, EventUserOnline, client)
	}

	go client.writer()
	client.reader()
}

func (s *chatService) announcePresence(ctx context.Context, eventType string, client *chatClient) {
	event := dto.ChatOutboundEvent{
		Type:     eventType,
		UserID:   client.userID,
		UserName: client.name,
	}
	s.hub.broadcastAll(event, client)
	s.publish(ctx, chatFanoutEvent{All: true, Event: event})
}

// handleInbound routes one decoded client event.
func (s *chatService) handleInbound(ctx context.Context, client *chatClient, event dto.ChatInboundEvent) {
	if err := s.validator.Struct(event); err != nil {
		client.deliver(dto.ChatOutboundEvent{Type: EventMessageError, Error: "invalid event payload"})
		return
	}

	switch event.Type {
	case "message":
		if _, err := s.SendMessage(ctx, client.userID, dto.ChatSendRequest{
			SwapRequestID: event.SwapRequestID,
			Message:       event.Message,
		}); err != nil {
			client.deliver(dto.ChatOutboundEvent{
				Type:          EventMessageError,
				SwapRequestID: event.SwapRequestID,
				Error:         err.Error(),
			})
			return
		}
		s.joinConversation(ctx, client, event.SwapRequestID)

	case "typing", "stop_typing":
		request, err := s.acceptedRequestFor(ctx, event.SwapRequestID, client.userID)
		if err != nil {
			return
		}
		s.joinConversation(ctx, client, event.SwapRequestID)

		outType := EventUserTyping
		if event.Type == "stop_typing" {
			outType = EventUserStoppedTyping
		}

		name := client.name
		if event.UserName != "" {
			name = event.UserName
		}

		outbound := dto.ChatOutboundEvent{
			Type:          outType,
			SwapRequestID: request.ID,
			UserID:        client.userID,
			UserName:      name,
		}
		rooms := []string{chatRoomName(request.ID), userRoomName(request.OtherParty(client.userID))}
		s.hub.broadcast(rooms, outbound, client)
		s.publish(ctx, chatFanoutEvent{Rooms: rooms, Event: outbound})
	}
}

// joinConversation subscribes the client to the conversation room after the
// participant check has already passed.
func (s *chatService) joinConversation(ctx context.Context, client *chatClient, swapRequestID uint) {
	room := chatRoomName(swapRequestID)
	if _, joined := client.rooms[room]; joined {
		return
	}
	s.hub.join(client, room)
}

// acceptedRequestFor loads the swap request and checks it is accepted and
// involves the caller.
func (s *chatService) acceptedRequestFor(ctx context.Context, swapRequestID, userID uint) (models.SwapRequest, error) {
	request, err := s.swaps.FindByID(ctx, swapRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SwapRequest{}, ErrChatNotAllowed
		}
		return models.SwapRequest{}, err
	}
	if request.Status != models.SwapStatusAccepted || !request.IsParticipant(userID) {
		return models.SwapRequest{}, ErrChatNotAllowed
	}
	return request, nil
}

// pairRequestIDs returns the ids of every accepted request between the two
// users. This is the aggregation key for one conversation.
func (s *chatService) pairRequestIDs(ctx context.Context, userID, otherID uint) ([]uint, error) {
	requests, err := s.swaps.ListBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(requests))
	for _, request := range requests {
		if request.Status == models.SwapStatusAccepted {
			ids = append(ids, request.ID)
		}
	}
	return ids, nil
}

// conversationRooms lists every room a message for this request must reach:
// the chat room of each accepted request between the pair, plus both user
// rooms so closed conversation views still receive badges.
func (s *chatService) conversationRooms(ctx context.Context, request models.SwapRequest) []string {
	rooms := []string{userRoomName(request.FromUserID), userRoomName(request.ToUserID)}

	ids, err := s.pairRequestIDs(ctx, request.FromUserID, request.ToUserID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("failed to expand conversation rooms")
		ids = []uint{request.ID}
	}
	for _, id := range ids {
		rooms = append(rooms, chatRoomName(id))
	}
	return rooms
}

func (s *chatService) publish(ctx context.Context, event chatFanoutEvent) {
	if s.redis == nil && s.natsConn == nil {
		return
	}

	event.Source = s.nodeID
	event.SentAt = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat fanout event")
		return
	}

	if s.redis != nil && s.channel != "" {
		if err := s.redis.Publish(ctx, s.channel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish chat event to redis")
		}
	}
	if s.natsConn != nil && s.natsSubject != "" {
		if err := s.natsConn.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish chat event to nats")
		}
	}
}

func (s *chatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.channel)
	defer func() {
		_ = pubsub.Close()
	}()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleFanout([]byte(msg.Payload))
	}
}

func (s *chatService) consumeNATS(ctx context.Context) {
	sub, err := s.natsConn.QueueSubscribe(s.natsSubject, "skillswap-chat", func(msg *nats.Msg) {
		s.handleFanout(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *chatService) handleFanout(data []byte) {
	var event chatFanoutEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat fanout event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	if event.Event.Type == EventNewMessage {
		observability.ChatMessages().WithLabelValues("remote").Inc()
	}

	if event.All {
		s.hub.broadcastAll(event.Event, nil)
		return
	}
	s.hub.broadcast(event.Rooms, event.Event, nil)
}

func (c *chatClient) reader() {
	defer c.close()

	for {
		var event dto.ChatInboundEvent
		if err := c.conn.ReadJSON(&event); err != nil {
			c.service.logger.Debug().Err(err).Uint("user_id", c.userID).Msg("chat read loop ended")
			return
		}
		c.service.handleInbound(c.baseCtx, c, event)
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) deliver(event dto.ChatOutboundEvent) {
	select {
	case c.send <- event:
	default:
		c.service.logger.Warn().Uint("user_id", c.userID).Msg("dropping chat event for slow client")
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.remove(c)
		observability.ChatConnections().Dec()
		_ = c.conn.Close()

		if c.service.presence.Disconnect(c.userID) {
			c.service.announcePresence(c.baseCtx, EventUserOffline, c)
		}
	})
}

func conversationSkills(requests []models.SwapRequest) string {
	seen := make(map[string]struct{})
	skills := make([]string, 0, len(requests)*2)
	for _, request := range requests {
		for _, skill := range []string{request.SkillToTeach, request.SkillToLearn} {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, strings.TrimSpace(skill))
		}
	}
	return strings.Join(skills, ", ")
}

func conversationTime(conversation dto.ConversationResponse) time.Time {
	if conversation.LastMessage == nil {
		return time.Time{}
	}
	return conversation.LastMessage.Timestamp
}
