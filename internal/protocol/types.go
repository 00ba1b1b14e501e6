// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol translates between the typed message taxonomy and the
// chat backend's wire payloads.
package protocol

import "encoding/json"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role is the local participant's side of the protocol. Some inbound payload
// shapes are legal only for one role, and media origin is inferred from it.
type Role string

const (
	RoleClient   Role = "client"
	RoleOperator Role = "operator"
)

// =============================================================================
// WIRE TYPE DISCRIMINATORS
// =============================================================================

// Inbound payload type discriminators as emitted by the chat backend.
const (
	TypeOperatorMessage = "operator_message"
	TypeClientMessage   = "client_message"
	TypeBotMessage      = "bot_message"
	TypeGreeting        = "greeting"
	TypeMedia           = "media"
	TypeAdvertising     = "advertising"
	TypeNotify          = "notify"
)

// =============================================================================
// WIRE ENVELOPES
// =============================================================================

// Outgoing is the envelope for every payload this client sends.
// "to" is the authoritative recipient key; older envelope variants used
// target_client_id / client_id, which the backend no longer accepts.
type Outgoing struct {
	Message  string `json:"message"`
	From     string `json:"from"`
	To       string `json:"to,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// envelope is the superset of every inbound payload shape. Message is raw
// because greeting payloads carry either a string or a list of strings.
type envelope struct {
	Type     string          `json:"type"`
	Message  json.RawMessage `json:"message"`
	From     string          `json:"from"`
	FileURL  string          `json:"file_url"`
	MimeType string          `json:"mime_type"`

	// ClientID is a historic sender key still emitted by older backend
	// deployments on the operator channel. Read as a fallback for From.
	ClientID string `json:"client_id"`
}

// =============================================================================
// DECODED VARIANTS
// =============================================================================

// Decoded is the closed set of results a payload can decode to. Every inbound
// payload maps to exactly one variant; malformed or unrecognized input maps to
// SystemNotice rather than an error.
type Decoded interface {
	decoded()
}

// OperatorText is a plain text message from an operator.
type OperatorText struct {
	From string
	Body string
}

// ClientText is a plain text message from a client (operator role only).
type ClientText struct {
	From string
	Body string
}

// MediaMessage carries an attachment reference with optional text.
type MediaMessage struct {
	From     string
	Body     string
	FileURL  string
	MimeType string
}

// BotPrompt is a single bot message rendered as an actionable prompt.
type BotPrompt struct {
	Body string
}

// GreetingScript is an ordered list of bot prompts to be revealed with a
// fixed inter-message delay by the greeting sequencer.
type GreetingScript struct {
	Prompts []string
}

// SystemNotice is the fallback arm: advertising, notify, scalar greetings,
// unknown types, and parse failures all land here.
type SystemNotice struct {
	From string
	Body string
}

func (OperatorText) decoded()   {}
func (ClientText) decoded()     {}
func (MediaMessage) decoded()   {}
func (BotPrompt) decoded()      {}
func (GreetingScript) decoded() {}
func (SystemNotice) decoded()   {}
