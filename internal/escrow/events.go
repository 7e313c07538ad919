package escrow

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type createdEvent struct {
	DuelID  *big.Int
	Creator common.Address
}

type joinedEvent struct {
	DuelID     *big.Int
	Joiner     common.Address
	StartPrice *big.Int
}

// decodeCreated extracts the assigned duel id from a creation receipt. The
// contract assigns ids starting at 1; a zero id means the event was mangled
// and the operation must not proceed on a guessed identifier.
func (c *Client) decodeCreated(receipt *types.Receipt) (*createdEvent, error) {
	lg, err := c.findEvent(receipt, "DuelCreated")
	if err != nil {
		return nil, err
	}
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("%w: DuelCreated missing indexed topics", ErrEventMissing)
	}
	ev := &createdEvent{
		DuelID:  new(big.Int).SetBytes(lg.Topics[1].Bytes()),
		Creator: common.BytesToAddress(lg.Topics[2].Bytes()),
	}
	if ev.DuelID.Sign() == 0 {
		return nil, fmt.Errorf("%w: DuelCreated carried zero id", ErrEventMissing)
	}
	return ev, nil
}

func (c *Client) decodeJoined(receipt *types.Receipt) (*joinedEvent, error) {
	lg, err := c.findEvent(receipt, "DuelJoined")
	if err != nil {
		return nil, err
	}
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("%w: DuelJoined missing indexed topics", ErrEventMissing)
	}
	var data struct {
		StartPrice *big.Int
	}
	if err := c.abi.UnpackIntoInterface(&data, "DuelJoined", lg.Data); err != nil {
		return nil, fmt.Errorf("%w: DuelJoined data: %v", ErrEventMissing, err)
	}
	return &joinedEvent{
		DuelID:     new(big.Int).SetBytes(lg.Topics[1].Bytes()),
		Joiner:     common.BytesToAddress(lg.Topics[2].Bytes()),
		StartPrice: data.StartPrice,
	}, nil
}

func (c *Client) decodeSettled(receipt *types.Receipt) (*SettleOutcome, error) {
	lg, err := c.findEvent(receipt, "DuelSettled")
	if err != nil {
		return nil, err
	}
	var data struct {
		Winner common.Address
		Payout *big.Int
		Fee    *big.Int
		Draw   bool
	}
	if err := c.abi.UnpackIntoInterface(&data, "DuelSettled", lg.Data); err != nil {
		return nil, fmt.Errorf("%w: DuelSettled data: %v", ErrEventMissing, err)
	}
	return &SettleOutcome{
		Winner:    data.Winner,
		PayoutWei: data.Payout,
		FeeWei:    data.Fee,
		Draw:      data.Draw,
	}, nil
}

func (c *Client) decodeCancelled(receipt *types.Receipt) error {
	_, err := c.findEvent(receipt, "DuelCancelled")
	return err
}

func (c *Client) findEvent(receipt *types.Receipt, name string) (*types.Log, error) {
	id := c.abi.Events[name].ID
	for _, lg := range receipt.Logs {
		if lg.Address == c.contract && len(lg.Topics) > 0 && lg.Topics[0] == id {
			return lg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s not present in receipt", ErrEventMissing, name)
}
