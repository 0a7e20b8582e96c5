// Package send runs the wallet's send pipeline: list the sender's UTXOs,
// select inputs, build, sign and broadcast a payment, and report the
// transaction id.
//
// Each call to Send is one strictly sequential run. A failed run leaves
// nothing behind (no partial transaction is returned or cached); callers
// retry by calling Send again, which lists UTXOs afresh.
package send

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bitfsorg/libdoge-go/events"
	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/reserve"
	"github.com/bitfsorg/libdoge-go/tx"
	"github.com/bitfsorg/libdoge-go/wallet"
)

const (
	// DefaultParentFetchLimit bounds concurrent parent transaction fetches.
	DefaultParentFetchLimit = 4

	// DefaultReservationTTL is how long spent outpoints stay reserved after
	// a broadcast.
	DefaultReservationTTL = 30 * time.Minute

	// paymentOutputs is the output count assumed while selecting: payment
	// plus change.
	paymentOutputs = 2
)

// Notifier is told about every successful broadcast.
type Notifier interface {
	NotifyBroadcast(ctx context.Context, ev *events.TxBroadcast) error
}

// Result describes a broadcast transaction. Amounts are koinu.
type Result struct {
	TxID   string
	Hex    string
	Amount uint64
	Fee    uint64 // implicit fee actually paid, including donated dust
	Change uint64
	Inputs []*tx.UTXO
	State  State
}

// Sender sends payments from single-key wallets through one indexer.
// A Sender is safe for concurrent use; sends from the same wallet may
// still race on the indexer's view of its UTXOs unless reservations are
// enabled.
type Sender struct {
	indexer      network.Indexer
	net          *wallet.NetworkConfig
	feePolicy    tx.FeePolicy
	dustLimit    uint64
	reservations reserve.Store
	reserveTTL   time.Duration
	notifier     Notifier
	logger       *slog.Logger
	observer     func(State)
	parentLimit  int
	now          func() time.Time
}

// Option configures a Sender.
type Option func(*Sender)

// WithFeePolicy replaces the default fixed fee.
func WithFeePolicy(p tx.FeePolicy) Option {
	return func(s *Sender) { s.feePolicy = p }
}

// WithDustLimit replaces tx.DefaultDustLimit.
func WithDustLimit(koinu uint64) Option {
	return func(s *Sender) { s.dustLimit = koinu }
}

// WithReservations enables outpoint reservations in store, held for ttl
// after a broadcast. A non-positive ttl means DefaultReservationTTL.
func WithReservations(store reserve.Store, ttl time.Duration) Option {
	return func(s *Sender) {
		if ttl <= 0 {
			ttl = DefaultReservationTTL
		}
		s.reservations = store
		s.reserveTTL = ttl
	}
}

// WithNotifier publishes an event after each successful broadcast.
func WithNotifier(n Notifier) Option {
	return func(s *Sender) { s.notifier = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) { s.logger = l }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(s *Sender) { s.observer = fn }
}

// WithParentFetchLimit bounds concurrent parent transaction fetches.
func WithParentFetchLimit(n int) Option {
	return func(s *Sender) { s.parentLimit = n }
}

// New creates a Sender for net backed by idx.
func New(idx network.Indexer, net *wallet.NetworkConfig, opts ...Option) (*Sender, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: indexer", ErrNilParam)
	}
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", wallet.ErrInvalidNetwork)
	}
	s := &Sender{
		indexer:     idx,
		net:         net,
		feePolicy:   tx.FixedFee(tx.DefaultFixedFee),
		dustLimit:   tx.DefaultDustLimit,
		parentLimit: DefaultParentFetchLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.feePolicy == nil {
		return nil, fmt.Errorf("%w: fee policy", ErrNilParam)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.parentLimit <= 0 {
		s.parentLimit = DefaultParentFetchLimit
	}
	return s, nil
}

// SendTransaction imports the WIF secret, pays amount koinu to toAddress
// and returns the transaction id.
func (s *Sender) SendTransaction(ctx context.Context, secret, toAddress string, amount uint64) (string, error) {
	kp, err := wallet.NewKeyPair(secret, s.net)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	res, err := s.Send(ctx, kp, toAddress, amount)
	if err != nil {
		return "", err
	}
	return res.TxID, nil
}

// Send pays amount koinu from kp's address to toAddress. Change above the
// dust limit goes back to kp's address.
//
// Errors keep their identity under errors.Is/As: *tx.InsufficientFundsError,
// *network.BroadcastRejectedError, network.ErrNetwork and so on.
func (s *Sender) Send(ctx context.Context, kp *wallet.KeyPair, toAddress string, amount uint64) (*Result, error) {
	r := &run{Sender: s, log: s.logger}
	res, err := r.execute(ctx, kp, toAddress, amount)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	return res, nil
}

// run is the state of one Send call.
type run struct {
	*Sender
	log      *slog.Logger
	state    State
	reserved []string // outpoints this run reserved
	keep     bool     // leave reservations in place on failure
}

func (r *run) enter(st State) {
	r.state = st
	r.log.Debug("send state", "state", st.String())
	if r.observer != nil {
		r.observer(st)
	}
}

func (r *run) fail(err error) {
	stage := r.state
	r.enter(Failed)

	if errors.Is(err, tx.ErrIncompleteTransaction) {
		r.log.Error("send produced an incomplete transaction", "stage", stage.String(), "error", err)
	} else {
		r.log.Debug("send failed", "stage", stage.String(), "error", err)
	}

	if len(r.reserved) == 0 || r.keep {
		return
	}
	if rerr := r.reservations.Release(r.reserved); rerr != nil {
		r.log.Warn("release reservations", "error", rerr)
	}
}

func (r *run) execute(ctx context.Context, kp *wallet.KeyPair, to string, amount uint64) (*Result, error) {
	r.enter(Idle)

	if kp == nil || kp.PrivateKey == nil || kp.PublicKey == nil {
		return nil, fmt.Errorf("%w: key pair", ErrNilParam)
	}
	if kp.Network != nil && kp.Network.Name != r.net.Name {
		return nil, fmt.Errorf("send: %w: key is for %s, sender is %s", wallet.ErrInvalidNetwork, kp.Network.Name, r.net.Name)
	}
	if err := wallet.ValidateAddress(to, r.net); err != nil {
		return nil, fmt.Errorf("send: destination: %w", err)
	}
	if amount == 0 || amount < r.dustLimit {
		return nil, fmt.Errorf("send: %w: amount %d koinu is below the dust limit %d", tx.ErrInvalidParams, amount, r.dustLimit)
	}
	// A key pair without a network pays from its address on the sender's.
	from := wallet.PubKeyHashAddress(kp.PubKeyHash(), r.net)
	r.log = r.log.With("from", from, "to", to, "amount", amount)

	r.enter(FetchingUTXOs)
	listed, err := r.indexer.ListUnspent(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("send: list unspent: %w", err)
	}
	candidates, err := r.candidates(listed)
	if err != nil {
		return nil, err
	}

	r.enter(SelectingInputs)
	selected, fee, err := tx.SelectWithFee(candidates, amount, r.feePolicy, paymentOutputs)
	if err != nil {
		return nil, fmt.Errorf("send: select inputs: %w", err)
	}
	if err := r.reserve(selected); err != nil {
		return nil, err
	}
	if err := r.fetchParents(ctx, selected); err != nil {
		return nil, err
	}

	r.enter(Building)
	builder := &tx.Builder{Network: r.net, DustLimit: r.dustLimit}
	utx, err := builder.BuildUnsigned(selected, tx.Output{Address: to, Value: amount}, from, fee)
	if err != nil {
		return nil, fmt.Errorf("send: build: %w", err)
	}

	r.enter(Signing)
	sigs, err := tx.SignAll(utx, kp)
	if err != nil {
		return nil, fmt.Errorf("send: sign: %w", err)
	}
	final, err := tx.Finalize(utx, sigs)
	if err != nil {
		return nil, fmt.Errorf("send: finalize: %w", err)
	}

	r.enter(Broadcasting)
	txid, err := r.indexer.BroadcastTx(ctx, final.Hex)
	if err != nil {
		// A transport failure leaves the outcome unknown: the relay may
		// have accepted the transaction before the connection dropped.
		r.keep = errors.Is(err, network.ErrNetwork) && !errors.Is(err, network.ErrBroadcastRejected)
		return nil, fmt.Errorf("send: broadcast %s: %w", final.TxID, err)
	}
	if txid != final.TxID {
		r.log.Warn("relay reported a different txid", "local", final.TxID, "relay", txid)
	}
	r.keep = true

	res := &Result{
		TxID:   final.TxID,
		Hex:    final.Hex,
		Amount: amount,
		Fee:    utx.Fee,
		Change: utx.Change(),
		Inputs: utx.Inputs,
	}
	r.enter(Succeeded)
	res.State = Succeeded
	r.log.Info("transaction broadcast", "txid", res.TxID, "fee", res.Fee, "change", res.Change)

	r.notify(ctx, from, to, res)
	return res, nil
}

// candidates converts indexer UTXOs and drops reserved outpoints.
func (r *run) candidates(listed []*network.UTXO) ([]*tx.UTXO, error) {
	var active map[string]time.Time
	if r.reservations != nil {
		now := r.now()
		pruned, err := r.reservations.Prune(now)
		if err != nil {
			return nil, fmt.Errorf("send: reservations: %w", err)
		}
		if pruned > 0 {
			r.log.Debug("pruned expired reservations", "count", pruned)
		}
		if active, err = r.reservations.Active(now); err != nil {
			return nil, fmt.Errorf("send: reservations: %w", err)
		}
	}

	out := make([]*tx.UTXO, 0, len(listed))
	for _, u := range listed {
		if u == nil {
			continue
		}
		c := &tx.UTXO{TxID: u.TxID, Vout: u.Vout, Value: u.Value}
		if u.ScriptPubKey != "" {
			script, err := hex.DecodeString(u.ScriptPubKey)
			if err != nil {
				return nil, fmt.Errorf("send: %w: %w: utxo %s script: %w", network.ErrIndexer, network.ErrInvalidResponse, c.Outpoint(), err)
			}
			c.ScriptPubKey = script
		}
		if _, held := active[c.Outpoint()]; held {
			r.log.Debug("skipping reserved utxo", "outpoint", c.Outpoint())
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *run) reserve(selected []*tx.UTXO) error {
	if r.reservations == nil {
		return nil
	}
	ops := make([]string, len(selected))
	for i, u := range selected {
		ops[i] = u.Outpoint()
	}
	now := r.now()
	if err := r.reservations.Reserve(ops, now, now.Add(r.reserveTTL)); err != nil {
		return fmt.Errorf("send: reserve inputs: %w", err)
	}
	r.reserved = ops
	return nil
}

// fetchParents attaches the full parent transaction to every selected
// input. Fetches run concurrently; the first error cancels the rest.
func (r *run) fetchParents(ctx context.Context, selected []*tx.UTXO) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parentLimit)
	for _, u := range selected {
		g.Go(func() error {
			raw, err := r.indexer.GetRawTx(gctx, u.TxID)
			if err != nil {
				return fmt.Errorf("send: parent %s: %w", u.TxID, err)
			}
			u.ParentRaw = raw
			return nil
		})
	}
	return g.Wait()
}

func (r *run) notify(ctx context.Context, from, to string, res *Result) {
	if r.notifier == nil {
		return
	}
	inputs := make([]string, len(res.Inputs))
	for i, u := range res.Inputs {
		inputs[i] = u.Outpoint()
	}
	ev := &events.TxBroadcast{
		Network: r.net.Name,
		TxID:    res.TxID,
		From:    from,
		To:      to,
		Amount:  res.Amount,
		Fee:     res.Fee,
		Change:  res.Change,
		Inputs:  inputs,
	}
	if err := r.notifier.NotifyBroadcast(ctx, ev); err != nil {
		r.log.Warn("broadcast notification failed", "txid", res.TxID, "error", err)
	}
}
