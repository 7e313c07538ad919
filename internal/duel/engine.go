package duel

import (
	"context"
	"errors"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// Escrow is the on-chain side of the lifecycle. Every call blocks until the
// transaction is confirmation-deep or fails; there is no optimistic path.
type Escrow interface {
	Create(ctx context.Context, p escrow.CreateParams) (escrow.Confirmation, uint64, error)
	Join(ctx context.Context, onChainID uint64, joiner common.Address, direction uint8, startPrice int64) (escrow.Confirmation, error)
	Settle(ctx context.Context, onChainID uint64, endPrice int64) (escrow.SettleOutcome, escrow.Confirmation, error)
	Cancel(ctx context.Context, onChainID uint64) (escrow.Confirmation, error)
	DuelState(ctx context.Context, onChainID uint64) (escrow.ChainDuel, error)
}

// PriceSource supplies fixed-point spot prices for duel assets.
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (int64, error)
}

// Repository is the durable mirror of chain state. Sync methods are
// idempotent on the confirming tx hash.
type Repository interface {
	CreateDuel(ctx context.Context, d *store.Duel) error
	GetDuel(ctx context.Context, id string) (*store.Duel, error)
	GetDuelByChainID(ctx context.Context, onChainID int64) (*store.Duel, error)
	SyncJoined(ctx context.Context, id, joiner string, dir store.Direction, startPrice int64, startedAt, endsAt time.Time, txHash string) error
	SyncSettled(ctx context.Context, id string, endPrice int64, winner *string, draw bool, payoutWei, feeWei *big.Int, txHash string) error
	SyncCancelled(ctx context.Context, id, txHash string) error
	ApplyChainState(ctx context.Context, id string, v store.ChainView) (bool, error)
}

// Limits are the server-side creation constraints. The contract enforces its
// own floor; these are the operator's tighter bounds.
type Limits struct {
	MinStakeWei *big.Int
	MaxStakeWei *big.Int
	Assets      []string
	JoinWindow  time.Duration
}

// Hook runs after a duel reaches settled, whether through Settle or through
// reconciliation. Hooks must not block.
type Hook func(ctx context.Context, d *store.Duel)

// Engine drives the duel lifecycle. The escrow contract is the source of
// truth: the engine submits transactions, waits for confirmation, and only
// then mirrors the result into the repository.
type Engine struct {
	esc    Escrow
	prices PriceSource
	repo   Repository
	limits Limits
	hooks  []Hook
	now    func() time.Time
}

func NewEngine(esc Escrow, prices PriceSource, repo Repository, limits Limits) *Engine {
	return &Engine{
		esc:    esc,
		prices: prices,
		repo:   repo,
		limits: limits,
		now:    time.Now,
	}
}

// OnSettled registers a settlement hook. Not safe to call once the engine is
// serving requests.
func (e *Engine) OnSettled(h Hook) {
	e.hooks = append(e.hooks, h)
}

type CreateRequest struct {
	Creator     string
	Asset       string
	DuelType    store.DuelType
	Direction   store.Direction
	StakeWei    *big.Int
	DurationSec int64
}

func (e *Engine) validateCreate(req *CreateRequest) error {
	req.Creator = strings.ToLower(req.Creator)
	req.Asset = strings.ToUpper(req.Asset)
	if !common.IsHexAddress(req.Creator) {
		return ErrInvalidAddress
	}
	if req.DuelType != store.DuelTypePriceDirection && req.DuelType != store.DuelTypeRandom {
		return ErrInvalidType
	}
	if req.Direction != store.DirectionUp && req.Direction != store.DirectionDown {
		return ErrInvalidDirection
	}
	if len(e.limits.Assets) > 0 && !slices.Contains(e.limits.Assets, req.Asset) {
		return ErrAssetNotAllowed
	}
	if req.StakeWei == nil || req.StakeWei.Sign() <= 0 {
		return ErrInvalidStake
	}
	if e.limits.MinStakeWei != nil && req.StakeWei.Cmp(e.limits.MinStakeWei) < 0 {
		return ErrStakeOutOfBounds
	}
	if e.limits.MaxStakeWei != nil && req.StakeWei.Cmp(e.limits.MaxStakeWei) > 0 {
		return ErrStakeOutOfBounds
	}
	if req.DurationSec <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Create escrows the creator's stake on chain and, once the transaction is
// confirmed, records the open duel. A failed or unconfirmed transaction
// leaves no local trace.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*store.Duel, error) {
	if err := e.validateCreate(&req); err != nil {
		return nil, err
	}

	conf, onChainID, err := e.esc.Create(ctx, escrow.CreateParams{
		Creator:     common.HexToAddress(req.Creator),
		Asset:       req.Asset,
		DuelType:    typeCode(req.DuelType),
		Direction:   directionCode(req.Direction),
		DurationSec: uint64(req.DurationSec),
		StakeWei:    req.StakeWei,
	})
	if err != nil {
		return nil, err
	}

	chainID := int64(onChainID)
	d := &store.Duel{
		ID:               store.NewID(),
		OnChainID:        &chainID,
		Asset:            req.Asset,
		DuelType:         req.DuelType,
		StakeWei:         req.StakeWei,
		DurationSec:      req.DurationSec,
		CreatorAddress:   req.Creator,
		CreatorDirection: req.Direction,
		Status:           store.DuelStatusOpen,
		CreateTxHash:     conf.TxHash,
	}
	if err := e.repo.CreateDuel(ctx, d); err != nil {
		// The stake is already escrowed under this id; everything needed to
		// re-record the duel goes into the log for Recover.
		log.Error().Err(err).Int64("on_chain_id", chainID).Str("tx_hash", conf.TxHash).
			Str("creator", req.Creator).Str("asset", req.Asset).
			Str("duel_type", string(req.DuelType)).Str("direction", string(req.Direction)).
			Str("stake_wei", req.StakeWei.String()).Int64("duration_sec", req.DurationSec).
			Msg("stake escrowed but local record failed")
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Int64("on_chain_id", chainID).
		Str("creator", req.Creator).Str("asset", req.Asset).Msg("duel created")
	return e.repo.GetDuel(ctx, d.ID)
}

// Recover re-records a duel whose escrow transaction confirmed but whose
// repository write was lost, from the details Create logged at failure time.
// The chain arbitrates the claim: the contract must hold a duel under the id
// with the same creator and stake. If the duel already moved on from open,
// reconciliation pulls the record forward.
func (e *Engine) Recover(ctx context.Context, req CreateRequest, onChainID uint64, txHash string) (*store.Duel, error) {
	if err := e.validateCreate(&req); err != nil {
		return nil, err
	}
	if onChainID == 0 {
		return nil, ErrNotOnChain
	}

	existing, err := e.repo.GetDuelByChainID(ctx, int64(onChainID))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	cd, err := e.esc.DuelState(ctx, onChainID)
	if err != nil {
		return nil, err
	}
	if cd.Status == escrow.ChainStatusNone {
		return nil, ErrChainMismatch
	}
	if strings.ToLower(cd.Creator.Hex()) != req.Creator ||
		cd.StakeWei == nil || cd.StakeWei.Cmp(req.StakeWei) != 0 {
		return nil, ErrChainMismatch
	}

	chainID := int64(onChainID)
	d := &store.Duel{
		ID:               store.NewID(),
		OnChainID:        &chainID,
		Asset:            req.Asset,
		DuelType:         req.DuelType,
		StakeWei:         req.StakeWei,
		DurationSec:      req.DurationSec,
		CreatorAddress:   req.Creator,
		CreatorDirection: req.Direction,
		Status:           store.DuelStatusOpen,
		CreateTxHash:     txHash,
	}
	if err := e.repo.CreateDuel(ctx, d); err != nil {
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Int64("on_chain_id", chainID).Msg("duel record recovered")
	return e.Reconcile(ctx, d.ID)
}

// Join takes the second side of an open duel. The joiner is assigned the
// direction opposite the creator's. For price-direction duels the start
// price is captured from the oracle before anything is sent to the chain;
// an unavailable price aborts the join without side effects.
func (e *Engine) Join(ctx context.Context, id, joiner string) (*store.Duel, error) {
	joiner = strings.ToLower(joiner)
	d, err := e.getDuel(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != store.DuelStatusOpen {
		return nil, ErrWrongStatus
	}
	if d.CreatorAddress == joiner {
		return nil, ErrSelfJoin
	}
	if d.OnChainID == nil {
		return nil, ErrNotOnChain
	}
	if e.now().After(d.CreatedAt.Add(e.limits.JoinWindow)) {
		return nil, ErrJoinWindowClosed
	}

	var startPrice int64
	if d.DuelType == store.DuelTypePriceDirection {
		startPrice, err = e.prices.CurrentPrice(ctx, d.Asset)
		if err != nil {
			return nil, err
		}
	}

	dir := d.CreatorDirection.Opposite()
	conf, err := e.esc.Join(ctx, uint64(*d.OnChainID), common.HexToAddress(joiner), directionCode(dir), startPrice)
	if err != nil {
		if errors.Is(err, escrow.ErrRejected) {
			e.reconcileAfterReject(ctx, d)
		}
		return nil, err
	}

	startedAt := e.now().UTC()
	endsAt := startedAt.Add(time.Duration(d.DurationSec) * time.Second)
	if err := e.repo.SyncJoined(ctx, d.ID, joiner, dir, startPrice, startedAt, endsAt, conf.TxHash); err != nil {
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Str("joiner", joiner).
		Int64("start_price", startPrice).Time("ends_at", endsAt).Msg("duel joined")
	return e.repo.GetDuel(ctx, d.ID)
}

// Settle closes a live duel that has passed its end time. The contract
// decides the outcome; the engine mirrors the emitted winner, payout, and
// fee rather than computing its own, and flags settlements that diverge from
// what the recorded prices imply. Settling an already settled duel is a
// no-op that returns the final record.
func (e *Engine) Settle(ctx context.Context, id string) (*store.Duel, error) {
	d, err := e.getDuel(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == store.DuelStatusSettled {
		return d, nil
	}
	if d.Status != store.DuelStatusLive {
		return nil, ErrWrongStatus
	}
	if d.OnChainID == nil {
		return nil, ErrNotOnChain
	}
	if d.EndsAt == nil || e.now().Before(*d.EndsAt) {
		return nil, ErrNotExpired
	}

	var endPrice int64
	if d.DuelType == store.DuelTypePriceDirection {
		endPrice, err = e.prices.CurrentPrice(ctx, d.Asset)
		if err != nil {
			return nil, err
		}
	}

	outcome, conf, err := e.esc.Settle(ctx, uint64(*d.OnChainID), endPrice)
	if err != nil {
		if errors.Is(err, escrow.ErrRejected) {
			e.reconcileAfterReject(ctx, d)
		}
		return nil, err
	}

	if note := outcomeDivergence(d, endPrice, outcome); note != "" {
		log.Warn().Str("duel_id", d.ID).Str("divergence", note).
			Msg("contract settlement diverges from recorded prices")
	}

	var winner *string
	if !outcome.Draw {
		w := strings.ToLower(outcome.Winner.Hex())
		winner = &w
	}
	if err := e.repo.SyncSettled(ctx, d.ID, endPrice, winner, outcome.Draw, outcome.PayoutWei, outcome.FeeWei, conf.TxHash); err != nil {
		return nil, err
	}

	final, err := e.repo.GetDuel(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Bool("draw", final.Draw).
		Int64("end_price", endPrice).Msg("duel settled")
	e.fireSettled(ctx, final)
	return final, nil
}

// Cancel lets the creator close their own open duel and recover the stake.
// Live and terminal duels cannot be cancelled.
func (e *Engine) Cancel(ctx context.Context, id, caller string) (*store.Duel, error) {
	caller = strings.ToLower(caller)
	d, err := e.getDuel(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.CreatorAddress != caller {
		return nil, ErrNotCreator
	}
	if d.Status != store.DuelStatusOpen {
		return nil, ErrWrongStatus
	}
	if d.OnChainID == nil {
		return nil, ErrNotOnChain
	}

	conf, err := e.esc.Cancel(ctx, uint64(*d.OnChainID))
	if err != nil {
		if errors.Is(err, escrow.ErrRejected) {
			e.reconcileAfterReject(ctx, d)
		}
		return nil, err
	}
	if err := e.repo.SyncCancelled(ctx, d.ID, conf.TxHash); err != nil {
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Msg("duel cancelled")
	return e.repo.GetDuel(ctx, d.ID)
}

// Reclaim recovers the creator's stake from a duel nobody joined before the
// join window closed. It also covers rows reconciliation marked cancelled
// without a locally recorded refund transaction.
func (e *Engine) Reclaim(ctx context.Context, id, caller string) (*store.Duel, error) {
	caller = strings.ToLower(caller)
	d, err := e.getDuel(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.CreatorAddress != caller {
		return nil, ErrNotCreator
	}
	if d.OnChainID == nil {
		return nil, ErrNotOnChain
	}
	switch d.Status {
	case store.DuelStatusOpen:
		if e.now().Before(d.CreatedAt.Add(e.limits.JoinWindow)) {
			return nil, ErrJoinWindowOpen
		}
	case store.DuelStatusCancelled:
		if d.CancelTxHash != nil {
			return nil, ErrAlreadyReclaimed
		}
	default:
		return nil, ErrWrongStatus
	}

	conf, err := e.esc.Cancel(ctx, uint64(*d.OnChainID))
	if err != nil {
		if errors.Is(err, escrow.ErrRejected) {
			// The chain may have refunded already; its word is final.
			if fresh, rerr := e.Reconcile(ctx, d.ID); rerr == nil && fresh.Status == store.DuelStatusCancelled {
				return nil, ErrAlreadyReclaimed
			}
		}
		return nil, err
	}
	if err := e.repo.SyncCancelled(ctx, d.ID, conf.TxHash); err != nil {
		return nil, err
	}
	log.Info().Str("duel_id", d.ID).Msg("stake reclaimed")
	return e.repo.GetDuel(ctx, d.ID)
}

// Reconcile reads the contract's view of a duel and forces the local record
// forward to match it. Transitions applied this way carry no tx hash. If
// reconciliation lands the duel on settled, settlement hooks fire.
func (e *Engine) Reconcile(ctx context.Context, id string) (*store.Duel, error) {
	d, err := e.getDuel(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OnChainID == nil {
		return d, nil
	}

	cd, err := e.esc.DuelState(ctx, uint64(*d.OnChainID))
	if err != nil {
		return nil, err
	}
	view, ok := chainView(d, cd)
	if !ok {
		return d, nil
	}
	changed, err := e.repo.ApplyChainState(ctx, d.ID, view)
	if err != nil {
		return nil, err
	}
	fresh, err := e.repo.GetDuel(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if changed {
		log.Warn().Str("duel_id", d.ID).Str("from", string(d.Status)).
			Str("to", string(fresh.Status)).Msg("reconciled duel from chain")
		if fresh.Status == store.DuelStatusSettled {
			e.fireSettled(ctx, fresh)
		}
	}
	return fresh, nil
}

func (e *Engine) getDuel(ctx context.Context, id string) (*store.Duel, error) {
	d, err := e.repo.GetDuel(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return d, err
}

func (e *Engine) reconcileAfterReject(ctx context.Context, d *store.Duel) {
	if _, err := e.Reconcile(ctx, d.ID); err != nil {
		log.Error().Err(err).Str("duel_id", d.ID).Msg("reconcile after chain rejection failed")
	}
}

func (e *Engine) fireSettled(ctx context.Context, d *store.Duel) {
	for _, h := range e.hooks {
		h(ctx, d)
	}
}

// chainView maps the contract's duel record onto the repository's
// reconciliation input. Open duels need no correction; the second result is
// false when there is nothing to apply.
func chainView(d *store.Duel, cd escrow.ChainDuel) (store.ChainView, bool) {
	switch cd.Status {
	case escrow.ChainStatusLive:
		joiner := strings.ToLower(cd.Joiner.Hex())
		dir := d.CreatorDirection.Opposite()
		start := cd.StartPrice.Int64()
		ends := time.Unix(int64(cd.EndsAt), 0).UTC()
		started := ends.Add(-time.Duration(d.DurationSec) * time.Second)
		return store.ChainView{
			Status:          store.DuelStatusLive,
			JoinerAddress:   &joiner,
			JoinerDirection: &dir,
			StartPrice:      &start,
			StartedAt:       &started,
			EndsAt:          &ends,
		}, true
	case escrow.ChainStatusSettled:
		view := store.ChainView{
			Status:    store.DuelStatusSettled,
			Draw:      cd.Draw,
			PayoutWei: cd.PayoutWei,
			FeeWei:    cd.FeeWei,
		}
		if cd.Joiner != (common.Address{}) {
			joiner := strings.ToLower(cd.Joiner.Hex())
			dir := d.CreatorDirection.Opposite()
			view.JoinerAddress = &joiner
			view.JoinerDirection = &dir
		}
		if cd.EndPrice != nil && cd.EndPrice.Sign() != 0 {
			end := cd.EndPrice.Int64()
			view.EndPrice = &end
		}
		if !cd.Draw {
			winner := strings.ToLower(cd.Winner.Hex())
			view.WinnerAddress = &winner
		}
		return view, true
	case escrow.ChainStatusCancelled:
		return store.ChainView{Status: store.DuelStatusCancelled}, true
	default:
		return store.ChainView{}, false
	}
}

func directionCode(d store.Direction) uint8 {
	if d == store.DirectionDown {
		return escrow.DirectionDown
	}
	return escrow.DirectionUp
}

func typeCode(t store.DuelType) uint8 {
	if t == store.DuelTypeRandom {
		return escrow.TypeRandom
	}
	return escrow.TypePriceDirection
}
