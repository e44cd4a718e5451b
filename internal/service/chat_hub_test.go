package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
)

func TestPresenceRegistryTransitions(t *testing.T) {
	presence := newPresenceRegistry()

	require.True(t, presence.Connect(1), "first connection brings the user online")
	require.False(t, presence.Connect(1), "second tab is not a transition")
	require.True(t, presence.Online(1))

	require.False(t, presence.Disconnect(1), "one tab still open")
	require.True(t, presence.Disconnect(1), "last close takes the user offline")
	require.False(t, presence.Online(1))

	require.False(t, presence.Disconnect(1), "untracked disconnects are ignored")
}

func TestPresenceRegistryOnlineIDs(t *testing.T) {
	presence := newPresenceRegistry()
	presence.Connect(1)
	presence.Connect(2)
	presence.Connect(2)

	ids := presence.OnlineIDs()
	require.ElementsMatch(t, []uint{1, 2}, ids)

	presence.Disconnect(2)
	presence.Disconnect(2)
	require.ElementsMatch(t, []uint{1}, presence.OnlineIDs())
}

func TestChatHubBroadcastDeliversOncePerClient(t *testing.T) {
	hub := newChatHub(zerolog.Nop())

	alice := &chatClient{send: make(chan dto.ChatOutboundEvent, 4), rooms: make(map[string]struct{}), userID: 1}
	bob := &chatClient{send: make(chan dto.ChatOutboundEvent, 4), rooms: make(map[string]struct{}), userID: 2}

	hub.join(alice, userRoomName(1))
	hub.join(alice, chatRoomName(10))
	hub.join(bob, chatRoomName(10))

	event := dto.ChatOutboundEvent{Type: EventNewMessage, SwapRequestID: 10}
	hub.broadcast([]string{userRoomName(1), chatRoomName(10)}, event, nil)

	require.Len(t, alice.send, 1, "client in both rooms receives the event once")
	require.Len(t, bob.send, 1)
}

func TestChatHubBroadcastSkipsSender(t *testing.T) {
	hub := newChatHub(zerolog.Nop())

	alice := &chatClient{send: make(chan dto.ChatOutboundEvent, 4), rooms: make(map[string]struct{}), userID: 1}
	bob := &chatClient{send: make(chan dto.ChatOutboundEvent, 4), rooms: make(map[string]struct{}), userID: 2}

	hub.join(alice, chatRoomName(10))
	hub.join(bob, chatRoomName(10))

	hub.broadcast([]string{chatRoomName(10)}, dto.ChatOutboundEvent{Type: EventUserTyping}, alice)
	require.Empty(t, alice.send)
	require.Len(t, bob.send, 1)
}

func TestChatHubRemoveEmptiesRooms(t *testing.T) {
	hub := newChatHub(zerolog.Nop())

	alice := &chatClient{send: make(chan dto.ChatOutboundEvent, 4), rooms: make(map[string]struct{}), userID: 1}
	hub.join(alice, chatRoomName(10))
	hub.remove(alice)

	hub.broadcast([]string{chatRoomName(10)}, dto.ChatOutboundEvent{Type: EventNewMessage}, nil)
	require.Empty(t, alice.send)
}
