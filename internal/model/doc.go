// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat threads and messages.
//
// A Message records one unit of conversation history: who produced it
// (Origin), how it behaves (Kind), whether the local participant sent it, and
// an optional attachment reference. A Thread is an append-only ordered
// sequence of messages belonging to exactly one conversation.
//
// The package has no dependencies on the wire protocol or the UI; the
// protocol package produces Messages and the store package owns Threads.
package model
