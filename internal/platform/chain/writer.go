package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cryptophy/lottod/internal/domain"
)

// Writer submits buyTickets transactions signed with a local key.
type Writer struct {
	eth      *ethclient.Client
	abi      abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
}

// NewWriter creates a Writer sharing the reader's RPC connection. The key is
// a hex-encoded secp256k1 private key without 0x prefix.
func NewWriter(c *Client, privateKeyHex string, chainID int64) (*Writer, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: invalid private key: %w", err)
	}

	return &Writer{
		eth:      c.eth,
		abi:      c.abi,
		contract: c.contract,
		key:      key,
		from:     ethcrypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(chainID),
	}, nil
}

// From returns the wallet address transactions are sent from.
func (w *Writer) From() string {
	return w.from.Hex()
}

// BuyTickets sends buyTickets(count) carrying valueWei as an EIP-1559
// transaction and returns its hash. The caller computes valueWei as
// price*count in integer arithmetic; this method never derives it.
func (w *Writer) BuyTickets(ctx context.Context, count int64, valueWei *big.Int) (string, error) {
	if count <= 0 || valueWei == nil || valueWei.Sign() <= 0 {
		return "", fmt.Errorf("chain: %w: count=%d", domain.ErrInvalidPurchase, count)
	}

	data, err := w.abi.Pack("buyTickets", big.NewInt(count))
	if err != nil {
		return "", fmt.Errorf("chain: pack buyTickets: %w", err)
	}

	nonce, err := w.eth.PendingNonceAt(ctx, w.from)
	if err != nil {
		return "", fmt.Errorf("chain: pending nonce: %w", err)
	}

	tipCap, err := w.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("chain: suggest tip cap: %w", err)
	}

	head, err := w.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("chain: head header: %w", err)
	}
	// feeCap = 2*baseFee + tip leaves headroom for one full base-fee bump.
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		tipCap,
	)

	gas, err := w.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.from,
		To:    &w.contract,
		Value: valueWei,
		Data:  data,
	})
	if err != nil {
		return "", fmt.Errorf("chain: estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &w.contract,
		Value:     valueWei,
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return "", fmt.Errorf("chain: sign tx: %w", err)
	}

	if err := w.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("chain: send tx: %w", err)
	}

	return signed.Hash().Hex(), nil
}

// Compile-time interface check.
var _ domain.ChainWriter = (*Writer)(nil)
