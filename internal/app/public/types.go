package public

import (
	"time"

	"github.com/bentodar-netizen/honeycomb-duels/internal/oracle"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// DuelView is the public JSON shape of a duel. Wei amounts are decimal
// strings because they exceed the safe integer range of JSON numbers;
// prices are formatted from their fixed-point representation.
type DuelView struct {
	ID               string     `json:"id"`
	OnChainID        *int64     `json:"on_chain_id,omitempty"`
	Asset            string     `json:"asset"`
	DuelType         string     `json:"duel_type"`
	StakeWei         string     `json:"stake_wei"`
	DurationSec      int64      `json:"duration_sec"`
	Creator          string     `json:"creator"`
	CreatorDirection string     `json:"creator_direction"`
	Joiner           *string    `json:"joiner,omitempty"`
	JoinerDirection  *string    `json:"joiner_direction,omitempty"`
	StartPrice       *string    `json:"start_price,omitempty"`
	EndPrice         *string    `json:"end_price,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	Status           string     `json:"status"`
	Winner           *string    `json:"winner,omitempty"`
	Draw             bool       `json:"draw"`
	PayoutWei        *string    `json:"payout_wei,omitempty"`
	FeeWei           *string    `json:"fee_wei,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type LeaderboardEntry struct {
	Wallet string `json:"wallet"`
	Wins   int64  `json:"wins"`
	Losses int64  `json:"losses"`
	Draws  int64  `json:"draws"`
	NetWei string `json:"net_wei"`
}

// View converts a stored duel into its public JSON shape. The write
// handlers use it to echo the duel they acted on.
func View(d *store.Duel) DuelView { return duelView(d) }

func duelView(d *store.Duel) DuelView {
	v := DuelView{
		ID:               d.ID,
		OnChainID:        d.OnChainID,
		Asset:            d.Asset,
		DuelType:         string(d.DuelType),
		StakeWei:         d.StakeWei.String(),
		DurationSec:      d.DurationSec,
		Creator:          d.CreatorAddress,
		CreatorDirection: string(d.CreatorDirection),
		Joiner:           d.JoinerAddress,
		StartedAt:        d.StartedAt,
		EndsAt:           d.EndsAt,
		Status:           string(d.Status),
		Winner:           d.WinnerAddress,
		Draw:             d.Draw,
		CreatedAt:        d.CreatedAt,
	}
	if d.JoinerDirection != nil {
		dir := string(*d.JoinerDirection)
		v.JoinerDirection = &dir
	}
	if d.StartPrice != nil {
		p := oracle.FormatPrice(*d.StartPrice)
		v.StartPrice = &p
	}
	if d.EndPrice != nil {
		p := oracle.FormatPrice(*d.EndPrice)
		v.EndPrice = &p
	}
	if d.PayoutWei != nil {
		s := d.PayoutWei.String()
		v.PayoutWei = &s
	}
	if d.FeeWei != nil {
		s := d.FeeWei.String()
		v.FeeWei = &s
	}
	return v
}

func leaderboardEntry(r store.LeaderboardRow) LeaderboardEntry {
	return LeaderboardEntry{
		Wallet: r.WalletAddress,
		Wins:   r.Wins,
		Losses: r.Losses,
		Draws:  r.Draws,
		NetWei: r.NetWei.String(),
	}
}
