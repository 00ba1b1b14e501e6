// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

// =============================================================================
// ENCODE
// =============================================================================

// Attachment is an uploaded file reference to include in an outgoing message.
type Attachment struct {
	FileURL  string
	MimeType string
}

// Encode serializes an outgoing message intent to the wire format. The
// payload always carries message and from; to is included only when a
// recipient peer is known, and the file fields only when an attachment is
// present.
func Encode(body, from, to string, att *Attachment) ([]byte, error) {
	out := Outgoing{
		Message: body,
		From:    from,
		To:      to,
	}
	if att != nil {
		out.FileURL = att.FileURL
		out.MimeType = att.MimeType
	}
	return json.Marshal(out)
}

// =============================================================================
// DECODE
// =============================================================================

// Decode classifies a raw inbound payload into the message taxonomy. It never
// returns an error: any parse failure or unrecognized shape degrades to a
// SystemNotice carrying the payload text, so a malformed payload can not
// interrupt the conversation stream.
func Decode(raw []byte, role Role) Decoded {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return SystemNotice{Body: string(raw)}
	}

	from := env.From
	if from == "" {
		from = env.ClientID
	}

	switch env.Type {
	case TypeOperatorMessage:
		if env.FileURL != "" {
			return MediaMessage{
				From:     from,
				Body:     asString(env.Message),
				FileURL:  env.FileURL,
				MimeType: env.MimeType,
			}
		}
		return OperatorText{From: from, Body: asString(env.Message)}

	case TypeClientMessage:
		if role == RoleOperator {
			return ClientText{From: from, Body: asString(env.Message)}
		}

	case TypeMedia:
		return MediaMessage{
			From:     from,
			Body:     asString(env.Message),
			FileURL:  env.FileURL,
			MimeType: env.MimeType,
		}

	case TypeGreeting:
		if prompts, ok := asStringList(env.Message); ok {
			return GreetingScript{Prompts: prompts}
		}
		return SystemNotice{Body: asString(env.Message)}

	case TypeBotMessage:
		return BotPrompt{Body: asString(env.Message)}

	case TypeAdvertising, TypeNotify:
		return SystemNotice{From: from, Body: asString(env.Message)}

	case "":
		// Historic operator-channel shape: a bare {from, message} pair
		// with no type discriminator is a client message.
		if role == RoleOperator && from != "" && env.FileURL == "" && len(env.Message) > 0 {
			return ClientText{From: from, Body: asString(env.Message)}
		}
	}

	// Fallback arm: unknown type, or a shape no arm above claimed.
	body := asString(env.Message)
	if body == "" {
		body = string(raw)
	}
	return SystemNotice{From: from, Body: body}
}

// AsMessage converts a decoded variant into a conversation Message. Greeting
// scripts return nil: their prompts are delivered individually by the
// sequencer, not appended at once.
func AsMessage(d Decoded, role Role) *model.Message {
	switch v := d.(type) {
	case OperatorText:
		msg := model.NewMessage(model.OriginOperator, model.KindPlain, v.Body)
		msg.Sender = v.From
		return msg

	case ClientText:
		msg := model.NewMessage(model.OriginClient, model.KindPlain, v.Body)
		msg.Sender = v.From
		return msg

	case MediaMessage:
		origin := model.OriginOperator
		if role == RoleOperator {
			origin = model.OriginClient
		}
		msg := model.NewMessage(origin, model.KindMedia, v.Body)
		msg.Sender = v.From
		msg.FileURL = v.FileURL
		msg.MimeType = v.MimeType
		return msg

	case BotPrompt:
		return model.NewPrompt(model.OriginBot, v.Body)

	case SystemNotice:
		msg := model.NewNotice(v.Body)
		msg.Sender = v.From
		return msg

	case GreetingScript:
		return nil
	}
	return nil
}

// Sender returns the peer identity a decoded payload originates from, or ""
// when the variant carries none.
func Sender(d Decoded) string {
	switch v := d.(type) {
	case OperatorText:
		return v.From
	case ClientText:
		return v.From
	case MediaMessage:
		return v.From
	case SystemNotice:
		return v.From
	}
	return ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// asString extracts a string from a raw message field. Non-string scalars are
// returned as their JSON literal text so nothing is silently dropped.
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// asStringList extracts a list of strings from a raw message field.
func asStringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}
