// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func buildThread(peer string, bodies ...string) *model.Thread {
	th := model.NewThread(peer)
	for i, body := range bodies {
		var msg *model.Message
		if i%2 == 0 {
			msg = model.NewMessage(model.OriginClient, model.KindPlain, body)
			msg.Sender = "shopper"
		} else {
			msg = model.NewMessage(model.OriginOperator, model.KindPlain, body)
			msg.Sender = "support"
		}
		th.Append(msg)
	}
	return th
}

func TestSaveAndLoadSession(t *testing.T) {
	a := openTestArchive(t)
	started := time.Now().Add(-5 * time.Minute)

	threads := []*model.Thread{
		buildThread("shopper-1", "hi", "hello", "my order is late"),
		buildThread("shopper-2", "refund please"),
	}
	require.NoError(t, a.SaveSession("sess-1", "operator", "support-1", started, threads))

	metas, err := a.Sessions()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "sess-1", metas[0].ID)
	assert.Equal(t, "operator", metas[0].Role)
	assert.Equal(t, "support-1", metas[0].Identity)
	assert.Equal(t, 4, metas[0].MessageCount)

	msgs, err := a.Messages("sess-1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	bodies := make([]string, len(msgs))
	for i, m := range msgs {
		bodies[i] = m.Body
	}
	assert.Contains(t, bodies, "my order is late")
	assert.Contains(t, bodies, "refund please")
}

func TestSaveSkipsEmptySession(t *testing.T) {
	a := openTestArchive(t)

	empty := []*model.Thread{model.NewThread("")}
	require.NoError(t, a.SaveSession("sess-empty", "client", "shopper", time.Now(), empty))

	metas, err := a.Sessions()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestSessionsMostRecentFirst(t *testing.T) {
	a := openTestArchive(t)
	started := time.Now().Add(-time.Hour)

	require.NoError(t, a.SaveSession("older", "client", "shopper", started,
		[]*model.Thread{buildThread("", "first session")}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.SaveSession("newer", "client", "shopper", started,
		[]*model.Thread{buildThread("", "second session")}))

	metas, err := a.Sessions()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "newer", metas[0].ID)
	assert.Equal(t, "older", metas[1].ID)
}

func TestMessagesUnknownSession(t *testing.T) {
	a := openTestArchive(t)
	_, err := a.Messages("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestMessagePersistsAttachment(t *testing.T) {
	a := openTestArchive(t)

	th := model.NewThread("shopper-1")
	msg := model.NewMessage(model.OriginClient, model.KindMedia, "see photo")
	msg.Sender = "shopper"
	msg.FileURL = "/media/receipt.png"
	msg.MimeType = "image/png"
	th.Append(msg)

	require.NoError(t, a.SaveSession("sess-m", "client", "shopper", time.Now(), []*model.Thread{th}))

	msgs, err := a.Messages("sess-m")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/media/receipt.png", msgs[0].FileURL)
	assert.Equal(t, "image/png", msgs[0].MimeType)
	assert.Equal(t, "media", msgs[0].Kind)
}

func TestFormatSessionList(t *testing.T) {
	out := FormatSessionList(nil)
	assert.Equal(t, "No archived sessions.", out)

	out = FormatSessionList([]SessionMeta{{
		ID:           "sess-abcdef1234",
		Role:         "operator",
		Identity:     "support-1",
		EndedAt:      time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
		MessageCount: 7,
	}})
	assert.Contains(t, out, "sess-abcde")
	assert.Contains(t, out, "operator")
	assert.Contains(t, out, "7")
}
