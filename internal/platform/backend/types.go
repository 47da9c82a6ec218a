package backend

import (
	"encoding/json"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/format"
)

// apiProfile is the wire shape of /user.
type apiProfile struct {
	UserID       string `json:"user_id"`
	FID          int64  `json:"fid"`
	ProfileImage string `json:"profile_image"`
	Address      string `json:"address"`
}

func (p apiProfile) toDomain(token string) domain.AccountProfile {
	return domain.AccountProfile{
		UserID:    p.UserID,
		FID:       p.FID,
		AvatarURL: p.ProfileImage,
		Wallet:    p.Address,
		Token:     token,
	}
}

// apiLeaderboardEntry is one row of any leaderboard tab.
type apiLeaderboardEntry struct {
	Buyer    string `json:"buyer"`
	Total    int64  `json:"total"`
	Username string `json:"username"`
	PfpURL   string `json:"pfp_url"`
}

func (e apiLeaderboardEntry) toDomain() domain.LeaderboardEntry {
	username := e.Username
	if username == "" {
		username = format.ShortAddress(e.Buyer)
	}
	return domain.LeaderboardEntry{
		Buyer:     e.Buyer,
		Total:     e.Total,
		Username:  username,
		AvatarURL: e.PfpURL,
	}
}

// apiLeaderboard is the wire shape of /baselottery/leaderboard.
type apiLeaderboard struct {
	Today   []apiLeaderboardEntry `json:"today"`
	Week    []apiLeaderboardEntry `json:"week"`
	AllTime []apiLeaderboardEntry `json:"allTime"`
}

func (b apiLeaderboard) toDomain() domain.Leaderboard {
	conv := func(in []apiLeaderboardEntry) []domain.LeaderboardEntry {
		out := make([]domain.LeaderboardEntry, 0, len(in))
		for _, e := range in {
			out = append(out, e.toDomain())
		}
		return out
	}
	return domain.Leaderboard{
		Today:   conv(b.Today),
		Week:    conv(b.Week),
		AllTime: conv(b.AllTime),
	}
}

// apiWinner is one drawn winner in a history record.
type apiWinner struct {
	Username string `json:"username"`
	PfpURL   string `json:"pfp_url"`
	Address  string `json:"address"`
}

// flexString decodes a JSON value that may arrive quoted or bare.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// apiHistoryDay is one row of /baselottery/history. normalDay arrives as a
// string or a number depending on backend version, so it decodes leniently.
type apiHistoryDay struct {
	NormalDay       flexString  `json:"normalDay"`
	LuckyNumber     uint64      `json:"luckyNumber"`
	PotEth          string      `json:"potEth"`
	UserTickets     []uint64    `json:"userTickets"`
	UserTicketCount int         `json:"userTicketCount"`
	TotalTickets    int         `json:"totalTickets"`
	Winners         []apiWinner `json:"winners"`
}

func (d apiHistoryDay) toDomain() domain.HistoryDay {
	winners := make([]domain.Winner, 0, len(d.Winners))
	for _, w := range d.Winners {
		username := w.Username
		if username == "" {
			username = format.ShortAddress(w.Address)
		}
		winners = append(winners, domain.Winner{
			Username:  username,
			AvatarURL: w.PfpURL,
			Address:   w.Address,
		})
	}
	return domain.HistoryDay{
		Day:             string(d.NormalDay),
		LuckyNumber:     d.LuckyNumber,
		PotEth:          d.PotEth,
		UserTickets:     d.UserTickets,
		UserTicketCount: d.UserTicketCount,
		TotalTickets:    d.TotalTickets,
		Winners:         winners,
	}
}
