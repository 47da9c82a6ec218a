package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

func TestGetProfileDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "tok-1", r.URL.Query().Get("token"))
		w.Write([]byte(`{"data":{"user_id":"u1","fid":42,"profile_image":"https://img","address":"0xabc"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	profile, err := c.GetProfile(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, int64(42), profile.FID)
	assert.Equal(t, "0xabc", profile.Wallet)
	assert.Equal(t, "tok-1", profile.Token)
}

func TestGetProfileUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetProfile(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetLeaderboardMissingTabs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/baselottery/leaderboard", r.URL.Path)
		w.Write([]byte(`{"data":{"today":[
			{"buyer":"0x1","total":3,"username":"ann"},
			{"buyer":"0x1234567890abcdef1234","total":1}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	board, err := c.GetLeaderboard(context.Background())
	require.NoError(t, err)

	require.Len(t, board.Today, 2)
	assert.Equal(t, "ann", board.Today[0].Username)
	// Missing usernames fall back to the shortened address.
	assert.Equal(t, "0x1234...1234", board.Today[1].Username)
	assert.Empty(t, board.Week)
	assert.Empty(t, board.AllTime)
}

func TestGetHistoryFlexibleDayField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/baselottery/history", r.URL.Path)
		require.Equal(t, "0xabc", r.URL.Query().Get("address"))
		require.Equal(t, "5", r.URL.Query().Get("normal_day"))
		// normalDay arrives quoted on one row and bare on the other.
		w.Write([]byte(`{"data":[
			{"normalDay":"5","luckyNumber":21,"potEth":"1.2","userTickets":[21],"userTicketCount":1,"totalTickets":9},
			{"normalDay":4,"luckyNumber":7,"potEth":"0.8","winners":[{"username":"bob","address":"0x2"}]}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	days, err := c.GetHistory(context.Background(), "0xabc", 5)
	require.NoError(t, err)

	require.Len(t, days, 2)
	assert.Equal(t, "5", days[0].Day)
	assert.Equal(t, "4", days[1].Day)
	assert.Equal(t, uint64(21), days[0].LuckyNumber)
	require.Len(t, days[1].Winners, 1)
	assert.Equal(t, "bob", days[1].Winners[0].Username)
}

func TestGetHistoryOmitsDayParamWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("normal_day"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	days, err := c.GetHistory(context.Background(), "0xabc", 0)
	require.NoError(t, err)
	assert.Empty(t, days)
}
