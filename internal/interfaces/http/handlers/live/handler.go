// Package live streams live query snapshots and session changes to browsers
// over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	fbdto "github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	fbusecases "github.com/frankincense-labs/cx-management/internal/application/feedback/usecases"
	"github.com/frankincense-labs/cx-management/internal/application/identity"
	identitydto "github.com/frankincense-labs/cx-management/internal/application/identity/dto"
	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/application/permission"
	ticketdto "github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	ticketusecases "github.com/frankincense-labs/cx-management/internal/application/ticket/usecases"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	permvo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
	authorizeWait  = 10 * time.Second
)

// SessionStore is the part of identity.Store a live connection needs.
type SessionStore interface {
	permission.RoleSource
	Current() identity.State
	Subscribe(listener identity.Listener) (unsubscribe func())
	// Done is closed when the session is evicted.
	Done() <-chan struct{}
}

// Authorizer checks a role policy for the caller's confirmed role.
type Authorizer interface {
	Authorize(ctx context.Context, roles permission.RoleSource, resource permvo.Resource, action permvo.Action) (uservo.Role, error)
}

// TicketResolver finds a ticket by number or id and checks the caller may
// view it.
type TicketResolver interface {
	Resolve(ctx context.Context, query ticketusecases.GetTicketQuery) (*ticket.Ticket, error)
}

// Streams are the live collections a connection can subscribe to.
type Streams struct {
	Hub      *livequery.Hub
	Feedback *fbusecases.FeedbackLiveQueries
	Tickets  *ticketusecases.TicketLiveQueries
}

type Handler struct {
	streams  Streams
	authz    Authorizer
	resolver TicketResolver
	upgrader websocket.Upgrader
	logger   logger.Interface
}

func NewHandler(streams Streams, authz Authorizer, resolver TicketResolver, allowedOrigins []string, log logger.Interface) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Handler{
		streams:  streams,
		authz:    authz,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger: log,
	}
}

// Connect upgrades the request and serves live subscriptions until the
// client goes away.
// GET /ws/live
func (h *Handler) Connect(c *gin.Context) {
	v, ok := c.Get(constants.ContextKeyStore)
	store, isStore := v.(SessionStore)
	if !ok || !isStore {
		utils.ErrorResponseWithError(c, errors.NewNotSignedInError())
		return
	}
	principalID := middleware.UserID(c)

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("failed to upgrade to websocket",
			"error", err,
			"ip", c.ClientIP(),
		)
		return
	}

	conn := &connection{
		h:           h,
		ws:          ws,
		store:       store,
		principalID: principalID,
		send:        make(chan *ServerMessage, sendBuffer),
		subs:        make(map[string]livequery.Disposer),
	}

	h.logger.Infow("live websocket connected",
		"user_id", principalID,
		"ip", c.ClientIP(),
	)

	go conn.writePump()
	conn.unsubscribeSession = store.Subscribe(conn.onSession)
	conn.readPump()
}

// connection is one browser socket and the subscriptions it holds.
type connection struct {
	h           *Handler
	ws          *websocket.Conn
	store       SessionStore
	principalID string

	sendMu sync.Mutex
	send   chan *ServerMessage
	closed bool

	subsMu sync.Mutex
	subs   map[string]livequery.Disposer

	unsubscribeSession func()
	shutdownOnce       sync.Once
}

func (c *connection) readPump() {
	defer c.shutdown()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.h.logger.Warnw("live websocket read error",
					"error", err,
					"user_id", c.principalID,
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.enqueue(&ServerMessage{Type: MsgTypeError, Error: "malformed message"})
			continue
		}

		switch msg.Op {
		case OpSubscribe:
			c.subscribe(msg)
		case OpUnsubscribe:
			c.unsubscribe(msg.ID)
		default:
			c.enqueue(&ServerMessage{Type: MsgTypeError, ID: msg.ID, Error: "unknown op"})
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				c.h.logger.Warnw("failed to write to live websocket",
					"error", err,
					"user_id", c.principalID,
				)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.store.Done():
			c.h.logger.Infow("session closed, disconnecting live websocket", "user_id", c.principalID)
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			return
		}
	}
}

// enqueue hands msg to the write pump. A client that cannot keep up is
// disconnected rather than sent a stale view.
func (c *connection) enqueue(msg *ServerMessage) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.h.logger.Warnw("live websocket send buffer full, disconnecting", "user_id", c.principalID)
		c.closed = true
		close(c.send)
	}
}

// closeSend lets the write pump flush what is queued and then close the
// socket.
func (c *connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *connection) shutdown() {
	c.shutdownOnce.Do(func() {
		if c.unsubscribeSession != nil {
			c.unsubscribeSession()
		}
		c.disposeAll()
		c.closeSend()

		c.ws.Close()
		c.h.logger.Infow("live websocket disconnected", "user_id", c.principalID)
	})
}

// onSession forwards every session transition. Sign-out drops the
// subscriptions. A socket is bound to the principal it was opened for, so a
// sign-in as anyone else closes it and the browser has to reconnect.
func (c *connection) onSession(state identity.State) {
	c.enqueue(&ServerMessage{Type: MsgTypeSession, Session: identitydto.ToSessionDTO(state)})
	if !state.SignedIn() {
		c.disposeAll()
		return
	}
	if state.Principal.ID != c.principalID {
		c.h.logger.Infow("principal changed, closing live websocket",
			"user_id", c.principalID,
			"new_user_id", state.Principal.ID,
		)
		c.disposeAll()
		c.closeSend()
	}
}

func (c *connection) disposeAll() {
	c.subsMu.Lock()
	subs := c.subs
	c.subs = make(map[string]livequery.Disposer)
	c.subsMu.Unlock()
	for _, dispose := range subs {
		dispose()
	}
}

func (c *connection) unsubscribe(id string) {
	c.subsMu.Lock()
	dispose, ok := c.subs[id]
	delete(c.subs, id)
	c.subsMu.Unlock()
	if ok {
		dispose()
	}
}

func (c *connection) subscribe(msg ClientMessage) {
	if msg.ID == "" {
		c.enqueue(&ServerMessage{Type: MsgTypeError, Error: "subscription id is required"})
		return
	}
	if !c.ownsSession() {
		c.fail(msg.ID, errors.NewNotSignedInError())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authorizeWait)
	defer cancel()

	// A reused id replaces the earlier subscription.
	c.unsubscribe(msg.ID)

	dispose, err := c.open(ctx, msg)
	if err != nil {
		c.fail(msg.ID, err)
		return
	}

	c.subsMu.Lock()
	c.subs[msg.ID] = dispose
	c.subsMu.Unlock()

	// The session may have moved on while the subscription was opening.
	if !c.ownsSession() {
		c.unsubscribe(msg.ID)
		return
	}

	c.h.logger.Debugw("live subscription opened",
		"user_id", c.principalID,
		"subscription_id", msg.ID,
		"view", msg.View,
	)
}

// ownsSession reports whether the socket's principal is still the one
// signed in to the session.
func (c *connection) ownsSession() bool {
	current := c.store.Current()
	return current.SignedIn() && current.Principal.ID == c.principalID
}

func (c *connection) open(ctx context.Context, msg ClientMessage) (livequery.Disposer, error) {
	s := c.h.streams
	id := msg.ID

	switch msg.View {
	case ViewFeedbackMine:
		if _, err := c.authorize(ctx, permvo.ResourceFeedback, permvo.ActionRead); err != nil {
			return nil, err
		}
		return s.Feedback.Mine(c.principalID, c.feedbackCallback(id)), nil

	case ViewFeedbackAll:
		if _, err := c.authorize(ctx, permvo.ResourceFeedback, permvo.ActionList); err != nil {
			return nil, err
		}
		return s.Feedback.All(c.feedbackCallback(id)), nil

	case ViewTicketsMine:
		if _, err := c.authorize(ctx, permvo.ResourceTicket, permvo.ActionRead); err != nil {
			return nil, err
		}
		return s.Tickets.Mine(c.principalID, c.ticketsCallback(id)), nil

	case ViewTicketsAll:
		if _, err := c.authorize(ctx, permvo.ResourceTicket, permvo.ActionList); err != nil {
			return nil, err
		}
		return s.Tickets.All(c.ticketsCallback(id)), nil

	case ViewTicket:
		t, err := c.resolveTicket(ctx, permvo.ResourceTicket, msg.Ticket)
		if err != nil {
			return nil, err
		}
		return s.Tickets.One(t.ID(), c.ticketsCallback(id)), nil

	case ViewReplies:
		t, err := c.resolveTicket(ctx, permvo.ResourceTicketReply, msg.Ticket)
		if err != nil {
			return nil, err
		}
		return s.Tickets.Replies(t.ID(), func(snap livequery.Snapshot[*ticket.Reply]) {
			c.deliver(id, snap.Version, ticketdto.ToReplyDTOs(snap.Items), snap.Err)
		}), nil

	case ViewInteractions:
		return c.openInteractions(ctx, msg)

	default:
		return nil, errors.NewValidationError("unknown view", string(msg.View))
	}
}

func (c *connection) openInteractions(ctx context.Context, msg ClientMessage) (livequery.Disposer, error) {
	if err := utils.ValidateStruct(msg.Filter); err != nil {
		return nil, err
	}
	filter, err := msg.Filter.ToFilter()
	if err != nil {
		return nil, err
	}

	role, err := c.store.AwaitRole(ctx)
	if err != nil {
		return nil, err
	}
	action := permvo.ActionRead
	if role.IsAdmin() {
		action = permvo.ActionList
	}
	if _, err := c.authorize(ctx, permvo.ResourceInteraction, action); err != nil {
		return nil, err
	}

	s := c.h.streams
	src := aggregation.FeedSources{
		FeedbackQuery: fbusecases.AllQuery(),
		Feedback:      s.Feedback.Source(),
		TicketsQuery:  ticketusecases.AllQuery(),
		Tickets:       s.Tickets.Source(),
	}
	if !role.IsAdmin() {
		src.FeedbackQuery = fbusecases.MineQuery(c.principalID)
		src.TicketsQuery = ticketusecases.MineQuery(c.principalID)
	}

	var version uint64
	feed := aggregation.NewFeed(s.Hub, src, filter, func(v aggregation.FeedView) {
		version++
		c.deliver(msg.ID, version, InteractionsPayload{
			Items:     v.Filtered,
			Total:     len(v.All),
			Customers: v.Customers,
		}, v.Err)
	})
	return feed.Close, nil
}

func (c *connection) authorize(ctx context.Context, resource permvo.Resource, action permvo.Action) (uservo.Role, error) {
	return c.h.authz.Authorize(ctx, c.store, resource, action)
}

func (c *connection) resolveTicket(ctx context.Context, resource permvo.Resource, reference string) (*ticket.Ticket, error) {
	role, err := c.authorize(ctx, resource, permvo.ActionRead)
	if err != nil {
		return nil, err
	}
	return c.h.resolver.Resolve(ctx, ticketusecases.GetTicketQuery{
		Reference: reference,
		ActorID:   c.principalID,
		ActorRole: role,
	})
}

func (c *connection) feedbackCallback(id string) func(livequery.Snapshot[*feedback.Feedback]) {
	return func(snap livequery.Snapshot[*feedback.Feedback]) {
		c.deliver(id, snap.Version, fbdto.ToFeedbackDTOs(snap.Items), snap.Err)
	}
}

func (c *connection) ticketsCallback(id string) func(livequery.Snapshot[*ticket.Ticket]) {
	return func(snap livequery.Snapshot[*ticket.Ticket]) {
		c.deliver(id, snap.Version, ticketdto.ToTicketDTOs(snap.Items), snap.Err)
	}
}

func (c *connection) deliver(id string, version uint64, items any, err error) {
	if err != nil {
		c.h.logger.Warnw("live subscription failed",
			"user_id", c.principalID,
			"subscription_id", id,
			"error", err,
		)
		c.enqueue(&ServerMessage{Type: MsgTypeSnapshot, ID: id, Version: version, Error: errorMessage(err)})
		return
	}
	c.enqueue(&ServerMessage{Type: MsgTypeSnapshot, ID: id, Version: version, Items: items})
}

func (c *connection) fail(id string, err error) {
	c.enqueue(&ServerMessage{Type: MsgTypeSnapshot, ID: id, Error: errorMessage(err)})
}

func errorMessage(err error) string {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return "subscription failed"
}
