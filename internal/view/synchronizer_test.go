package view

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

// fakeChain serves fixed contract reads and counts calls.
type fakeChain struct {
	mu         sync.Mutex
	day        uint64
	pot        *big.Int
	price      *big.Int
	total      uint64
	tickets    []domain.Ticket
	potCalls   int
	totalCalls int
	userCalls  int
}

func (f *fakeChain) CurrentDay(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.day, nil
}

func (f *fakeChain) DayPot(ctx context.Context, day uint64) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.potCalls++
	return new(big.Int).Set(f.pot), nil
}

func (f *fakeChain) RequiredETH(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.price), nil
}

func (f *fakeChain) TotalTicketsToday(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	return f.total, nil
}

func (f *fakeChain) UserTickets(ctx context.Context, address string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	out := make([]domain.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out, nil
}

func (f *fakeChain) DayInfo(ctx context.Context, day uint64) (domain.DayInfo, error) {
	return domain.DayInfo{Day: day}, nil
}

func (f *fakeChain) setPot(wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pot = wei
}

// fakeWriter records the single mutating call.
type fakeWriter struct {
	mu    sync.Mutex
	count int64
	value *big.Int
	calls int
	err   error
}

func (f *fakeWriter) BuyTickets(ctx context.Context, count int64, valueWei *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.count = count
	f.value = new(big.Int).Set(valueWei)
	if f.err != nil {
		return "", f.err
	}
	return "0xdeadbeef", nil
}

// fakeReceipts resolves receipts with a fixed outcome, optionally gated on a
// release channel.
type fakeReceipts struct {
	status  domain.TxStatus
	err     error
	release chan struct{}
}

func (f *fakeReceipts) Wait(ctx context.Context, txHash string) (domain.TxStatus, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.TxFailed, ctx.Err()
		}
	}
	return f.status, f.err
}

type fakeIdentity struct {
	wallet string
}

func (f *fakeIdentity) Profile() (domain.AccountProfile, bool) {
	if f.wallet == "" {
		return domain.AccountProfile{}, false
	}
	return domain.AccountProfile{Wallet: f.wallet}, true
}

// fakeBus records every published payload in order.
type fakeBus struct {
	mu       sync.Mutex
	messages []busMessage
}

type busMessage struct {
	channel string
	payload []byte
}

func (f *fakeBus) Publish(ctx context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, busMessage{channel: channel, payload: payload})
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

// statusSequence extracts the distinct status values seen on the snapshot
// channel, in publication order.
func (f *fakeBus) statusSequence(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var seq []string
	for _, m := range f.messages {
		if m.channel != domain.ChannelSnapshot {
			continue
		}
		var snap domain.DaySnapshot
		require.NoError(t, json.Unmarshal(m.payload, &snap))
		if len(seq) == 0 || seq[len(seq)-1] != snap.StatusMsg {
			seq = append(seq, snap.StatusMsg)
		}
	}
	return seq
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// slowPolls makes each poller run exactly once at startup within a test.
func slowPolls() PollIntervals {
	return PollIntervals{
		Day:     time.Hour,
		Pot:     time.Hour,
		Price:   time.Hour,
		Tickets: time.Hour,
		Total:   time.Hour,
	}
}

func startSync(t *testing.T, opts Options) *Synchronizer {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	if opts.SubmitTimeout == 0 {
		opts.SubmitTimeout = 5 * time.Second
	}
	s := New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestPurchaseLifecycleEndToEnd(t *testing.T) {
	chain := &fakeChain{
		day:   5,
		pot:   big.NewInt(1_000_000_000_000_000_000), // 1 ETH
		price: big.NewInt(100),
		total: 7,
		tickets: []domain.Ticket{
			{Day: 5, Number: 41},
		},
	}
	writer := &fakeWriter{}
	bus := &fakeBus{}

	s := startSync(t, Options{
		Chain:    chain,
		Writer:   writer,
		Receipts: &fakeReceipts{status: domain.TxConfirmed},
		Bus:      bus,
		Identity: &fakeIdentity{wallet: "0xabc"},
		Poll:     slowPolls(),
	})

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.DayKnown && snap.PriceWei != nil
	}, 2*time.Second, 5*time.Millisecond)

	// The confirmation refresh must see a fresher pot than any earlier poll.
	chain.setPot(big.NewInt(1_200_000_000_000_000_000)) // 1.2 ETH

	res, err := s.SubmitPurchase(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), writer.count)
	assert.Equal(t, int64(200), writer.value.Int64(), "value is price times count in wei")
	assert.Equal(t, domain.PurchaseConfirmed, res.Purchase.State)
	assert.Equal(t, "0xdeadbeef", res.Purchase.TxHash)
	assert.Equal(t, "I just bought 2 tickets for a chance to win 1.200000 ETH in today's draw!", res.ShareMessage)

	require.Eventually(t, func() bool {
		return s.Snapshot().StatusMsg == StatusSuccess
	}, 2*time.Second, 5*time.Millisecond)

	snap := s.Snapshot()
	require.NotNil(t, snap.PotWei)
	assert.Equal(t, "1200000000000000000", snap.PotWei.String(), "snapshot carries the refetched pot")
	require.NotNil(t, snap.TotalTickets)
	assert.Equal(t, []uint64{41}, snap.MyTickets)
	assert.Equal(t, domain.PurchaseIdle, snap.Purchase.State, "machine returns to idle after side effects")

	seq := bus.statusSequence(t)
	assert.Subset(t, seq, []string{StatusSending, StatusConfirming, StatusSuccess})
	sending, confirming, success := -1, -1, -1
	for i, v := range seq {
		switch v {
		case StatusSending:
			if sending == -1 {
				sending = i
			}
		case StatusConfirming:
			if confirming == -1 {
				confirming = i
			}
		case StatusSuccess:
			if success == -1 {
				success = i
			}
		}
	}
	require.True(t, sending >= 0 && confirming > sending && success > confirming,
		"status order must be sending, confirming, success; got %v", seq)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	s := New(Options{
		Chain:         &fakeChain{price: big.NewInt(100)},
		Writer:        &fakeWriter{},
		Receipts:      &fakeReceipts{status: domain.TxConfirmed},
		Logger:        testLogger(),
		SubmitTimeout: time.Second,
	})

	_, err := s.SubmitPurchase(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPurchase)

	_, err = s.SubmitPurchase(context.Background(), -3)
	assert.ErrorIs(t, err, domain.ErrInvalidPurchase)

	// Price has not been polled yet; leaving idle requires a known price.
	_, err = s.SubmitPurchase(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPriceUnknown)

	assert.Equal(t, domain.PurchaseIdle, s.Snapshot().Purchase.State, "rejected submits are no-ops")
}

func TestSubmitRejectsWhileInFlight(t *testing.T) {
	chain := &fakeChain{day: 5, pot: big.NewInt(1), price: big.NewInt(100), total: 1}
	release := make(chan struct{})
	s := startSync(t, Options{
		Chain:    chain,
		Writer:   &fakeWriter{},
		Receipts: &fakeReceipts{status: domain.TxConfirmed, release: release},
		Poll:     slowPolls(),
	})

	require.Eventually(t, func() bool {
		return s.Snapshot().PriceWei != nil
	}, 2*time.Second, 5*time.Millisecond)

	first := make(chan error, 1)
	go func() {
		_, err := s.SubmitPurchase(context.Background(), 1)
		first <- err
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().Purchase.State == domain.PurchaseSubmitted
	}, 2*time.Second, 5*time.Millisecond)

	_, err := s.SubmitPurchase(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrPurchaseInFlight)

	close(release)
	require.NoError(t, <-first)
}

func TestRevertedPurchaseIsRetryable(t *testing.T) {
	chain := &fakeChain{day: 5, pot: big.NewInt(1), price: big.NewInt(100), total: 1}
	receipts := &fakeReceipts{status: domain.TxFailed}
	s := startSync(t, Options{
		Chain:    chain,
		Writer:   &fakeWriter{},
		Receipts: receipts,
		Poll:     slowPolls(),
	})

	require.Eventually(t, func() bool {
		return s.Snapshot().PriceWei != nil
	}, 2*time.Second, 5*time.Millisecond)

	res, err := s.SubmitPurchase(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrTxReverted)
	assert.Equal(t, domain.PurchaseFailed, res.Purchase.State)

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.StatusMsg == StatusDefault && snap.Purchase.State == domain.PurchaseIdle
	}, 2*time.Second, 5*time.Millisecond)

	receipts.status = domain.TxConfirmed
	_, err = s.SubmitPurchase(context.Background(), 1)
	assert.NoError(t, err, "a failed purchase frees the submit path")
}

func TestSubmitFailureRestoresDefaultLabel(t *testing.T) {
	chain := &fakeChain{day: 5, pot: big.NewInt(1), price: big.NewInt(100), total: 1}
	writer := &fakeWriter{err: errors.New("rpc: nonce too low")}
	s := startSync(t, Options{
		Chain:    chain,
		Writer:   writer,
		Receipts: &fakeReceipts{status: domain.TxConfirmed},
		Poll:     slowPolls(),
	})

	require.Eventually(t, func() bool {
		return s.Snapshot().PriceWei != nil
	}, 2*time.Second, 5*time.Millisecond)

	_, err := s.SubmitPurchase(context.Background(), 1)
	require.Error(t, err)

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.StatusMsg == StatusDefault && snap.Purchase.State == domain.PurchaseIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReceiptTimeoutFailsPurchase(t *testing.T) {
	chain := &fakeChain{day: 5, pot: big.NewInt(1), price: big.NewInt(100), total: 1}
	s := startSync(t, Options{
		Chain:         chain,
		Writer:        &fakeWriter{},
		Receipts:      &fakeReceipts{status: domain.TxConfirmed, release: make(chan struct{})},
		Poll:          slowPolls(),
		SubmitTimeout: 50 * time.Millisecond,
	})

	require.Eventually(t, func() bool {
		return s.Snapshot().PriceWei != nil
	}, 2*time.Second, 5*time.Millisecond)

	_, err := s.SubmitPurchase(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrReceiptTimeout)

	require.Eventually(t, func() bool {
		return s.Snapshot().Purchase.State == domain.PurchaseIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestShareMessage(t *testing.T) {
	assert.Equal(t,
		"I just bought 1 ticket for a chance to win 0.500000 ETH in today's draw!",
		ShareMessage(1, big.NewInt(500_000_000_000_000_000)),
	)
	assert.Equal(t,
		"I just bought 3 tickets for a chance to win 0.000000 ETH in today's draw!",
		ShareMessage(3, nil),
	)
}
