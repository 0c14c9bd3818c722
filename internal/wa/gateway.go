package wa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// GatewayConfig selects the whatsmeow device-session store. This is the
// library's own credential storage, not transcript persistence.
type GatewayConfig struct {
	Dialect string // "sqlite3" or "postgres"
	DSN     string
}

// Gateway is the WhatsApp transport glue: it subscribes to message events,
// filters out non-relayable ones, drives the typing indicator and sends the
// responder's reply back to the originating chat. Login-state transitions are
// forwarded to the status sink.
type Gateway struct {
	client    *whatsmeow.Client
	responder Responder
	status    StatusSink
	log       *slog.Logger
}

func NewGateway(ctx context.Context, cfg GatewayConfig, responder Responder, status StatusSink, log *slog.Logger) (*Gateway, error) {
	if responder == nil {
		return nil, errors.New("wa: responder must not be nil")
	}
	if status == nil {
		return nil, errors.New("wa: status sink must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	container, err := sqlstore.New(ctx, cfg.Dialect, cfg.DSN, waLog.Stdout("Database", "WARN", false))
	if err != nil {
		return nil, fmt.Errorf("wa: open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("wa: load device: %w", err)
	}

	g := &Gateway{
		client:    whatsmeow.NewClient(device, waLog.Stdout("Client", "WARN", false)),
		responder: responder,
		status:    status,
		log:       log,
	}
	g.client.AddEventHandler(g.handleEvent)
	return g, nil
}

// Connect starts the WhatsApp session. A device without stored credentials
// goes through QR pairing; the codes are forwarded to the status sink so the
// status page can render them.
func (g *Gateway) Connect(ctx context.Context) error {
	if g.client.Store.ID == nil {
		qr, err := g.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("wa: qr channel: %w", err)
		}
		if err := g.client.Connect(); err != nil {
			return fmt.Errorf("wa: connect: %w", err)
		}
		go g.consumeQR(qr)
		return nil
	}

	if err := g.client.Connect(); err != nil {
		return fmt.Errorf("wa: connect: %w", err)
	}
	return nil
}

func (g *Gateway) Disconnect() {
	g.client.Disconnect()
}

func (g *Gateway) consumeQR(ch <-chan whatsmeow.QRChannelItem) {
	for item := range ch {
		switch item.Event {
		case "code":
			g.status.SetQR(item.Code)
		case "success":
			g.status.SetConnected()
		default:
			g.log.Warn("qr pairing ended", "event", item.Event)
			g.status.SetWaiting()
		}
	}
}

// handleEvent runs on whatsmeow's event goroutine. A fault while handling one
// event must not take the process down; it is logged and the next event is
// handled normally.
func (g *Gateway) handleEvent(evt any) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("panic in event handler", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch e := evt.(type) {
	case *events.Message:
		g.handleMessage(e)
	case *events.Connected:
		g.status.SetConnected()
		g.log.Info("whatsapp connected")
	case *events.LoggedOut:
		g.status.SetWaiting()
		g.log.Warn("logged out, pairing required again", "reason", e.Reason)
	}
}

func (g *Gateway) handleMessage(e *events.Message) {
	text := inboundText(e)
	if text == "" {
		return
	}

	chat := e.Info.Chat
	userID := e.Info.Sender.User
	g.log.Info("inbound message", "user", userID, "chat", chat.String())

	ctx := context.Background()
	g.setTyping(chat, true)
	reply := g.responder.Reply(ctx, userID, text)
	g.setTyping(chat, false)

	if err := g.send(ctx, chat, reply); err != nil {
		g.log.Error("send reply failed", "chat", chat.String(), "err", err)
	}
}

func (g *Gateway) setTyping(chat types.JID, on bool) {
	state := types.ChatPresenceComposing
	if !on {
		state = types.ChatPresencePaused
	}
	// Best effort: a stale typing indicator is acceptable.
	if err := g.client.SendChatPresence(chat, state, types.ChatPresenceMediaText); err != nil {
		g.log.Debug("chat presence update failed", "chat", chat.String(), "err", err)
	}
}

func (g *Gateway) send(ctx context.Context, chat types.JID, text string) error {
	_, err := g.client.SendMessage(ctx, chat, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("wa: send message: %w", err)
	}
	return nil
}

// inboundText returns the relayable text of a message event, or "" when the
// event must be ignored: self-sent messages, status updates and payloads
// without plain text.
func inboundText(e *events.Message) string {
	if e.Info.IsFromMe || e.Info.Chat == types.StatusBroadcastJID {
		return ""
	}
	if e.Message == nil {
		return ""
	}
	if t := e.Message.GetConversation(); t != "" {
		return t
	}
	if ext := e.Message.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}
