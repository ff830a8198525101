package main

import (
	"github.com/akinalp/scribe/services"
	"github.com/akinalp/scribe/ws"
)

// registerHubCallbacks connects client-originated hub events to the services.
// The hub lives in ws and must not import services, so main wires them.
func registerHubCallbacks(hub *ws.Hub, conversation services.ConversationService) {
	hub.OnTyping(func(fromID, toID string) {
		conversation.RelayTyping(fromID, toID)
	})
	hub.OnUserDisconnected(conversation.ForgetTyping)
}
