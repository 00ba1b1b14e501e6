// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the shopchat TUI.

This package contains styled components built on top of the Bubble Tea and
Lip Gloss libraries, shared by the client and operator panels.

# Components

MessageBubble (message.go) - Styled bubbles for chat messages: own messages
hang right, peer and bot messages hang left, notices center. Actionable bot
prompts are numbered so they can be activated with "/say <n>".

StatusBar (statusbar.go) - Bottom status bar with connection state, identity,
active peer, and a transient note.

RosterList (roster.go) - Operator sidebar listing connected clients with
online indicators and unread badges.
*/
package components
