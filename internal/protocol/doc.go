// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol is the codec between the typed message taxonomy and the
// chat backend's JSON wire payloads.
//
// Outgoing intents are encoded with Encode; inbound payloads are classified
// by Decode into the closed Decoded variant set, with SystemNotice as the
// explicit fallback arm. Decode never fails: malformed input becomes a
// system notice so the conversation stream is never interrupted.
package protocol
