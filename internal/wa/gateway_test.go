package wa

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func userJID(user string) types.JID {
	return types.NewJID(user, types.DefaultUserServer)
}

func textEvent(text string) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   userJID("5511999990000"),
				Sender: userJID("5511999990000"),
			},
		},
		Message: &waE2E.Message{Conversation: proto.String(text)},
	}
}

func TestInboundText_Conversation(t *testing.T) {
	require.Equal(t, "qual o tratamento?", inboundText(textEvent("qual o tratamento?")))
}

func TestInboundText_ExtendedText(t *testing.T) {
	e := textEvent("")
	e.Message = &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("linked question")},
	}
	require.Equal(t, "linked question", inboundText(e))
}

func TestInboundText_IgnoresSelfSent(t *testing.T) {
	e := textEvent("note to self")
	e.Info.IsFromMe = true
	require.Empty(t, inboundText(e))
}

func TestInboundText_IgnoresStatusUpdates(t *testing.T) {
	e := textEvent("status text")
	e.Info.Chat = types.StatusBroadcastJID
	require.Empty(t, inboundText(e))
}

func TestInboundText_IgnoresNonText(t *testing.T) {
	e := textEvent("")
	e.Message = &waE2E.Message{}
	require.Empty(t, inboundText(e))

	e.Message = nil
	require.Empty(t, inboundText(e))
}

func TestNewGateway_ValidatesDependencies(t *testing.T) {
	_, err := NewGateway(t.Context(), GatewayConfig{}, nil, nil, nil)
	require.Error(t, err)
}
