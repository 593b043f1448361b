package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsJSONPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL)
	require.True(t, d.Configured())

	err := d.Send(context.Background(), &discordgo.WebhookParams{
		Username: "Verification Logger",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "New Verification Completed",
			Description: "details",
			Color:       0x00FF00,
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Verification Logger", got["username"])
	embeds, ok := got["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	assert.Equal(t, "New Verification Completed", embeds[0].(map[string]any)["title"])
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDispatcher(srv.URL).Send(context.Background(), &discordgo.WebhookParams{})
	assert.Error(t, err)
}

func TestSend_Unconfigured(t *testing.T) {
	d := NewDispatcher("")
	assert.False(t, d.Configured())
	assert.NoError(t, d.Send(context.Background(), &discordgo.WebhookParams{}))
}
