// Package chain implements the domain chain interfaces against the lottery
// contract using go-ethereum. Every read is a stateless eth_call; the only
// write path is the payable buyTickets transaction.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cryptophy/lottod/internal/domain"
)

// Client is a read-only client for the lottery contract.
type Client struct {
	eth      *ethclient.Client
	abi      abi.ABI
	contract common.Address
}

// New dials the RPC endpoint and prepares the contract ABI.
func New(rpcURL, contractAddress string) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(lotteryABI))
	if err != nil {
		return nil, fmt.Errorf("chain: parse abi: %w", err)
	}

	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}

	return &Client{
		eth:      eth,
		abi:      parsed,
		contract: common.HexToAddress(contractAddress),
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Eth returns the raw ethclient for the writer and receipt waiter, which
// share the connection.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// call performs one eth_call against the contract and unpacks the outputs.
func (c *Client) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: pack %s: %w", method, err)
	}

	res, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s: %w", method, err)
	}

	out, err := c.abi.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("chain: unpack %s: %w", method, err)
	}
	return out, nil
}

// CurrentDay returns the index of the lottery day in progress.
func (c *Client) CurrentDay(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "currentDay")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// DayPot returns the accumulated pot in wei for the given day.
func (c *Client) DayPot(ctx context.Context, day uint64) (*big.Int, error) {
	out, err := c.call(ctx, "getDayPot", new(big.Int).SetUint64(day))
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// RequiredETH returns the price of one ticket in wei.
func (c *Client) RequiredETH(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "getRequiredETH")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// TotalTicketsToday returns the number of tickets sold for the current day.
func (c *Client) TotalTicketsToday(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "getTotalTicketsToday")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Uint64(), nil
}

// userTicketRecord mirrors the getUserTickets tuple layout.
type userTicketRecord struct {
	Day    *big.Int
	Number *big.Int
}

// UserTickets returns every ticket the address holds, across all days.
func (c *Client) UserTickets(ctx context.Context, address string) ([]domain.Ticket, error) {
	out, err := c.call(ctx, "getUserTickets", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	records := *abi.ConvertType(out[0], new([]userTicketRecord)).(*[]userTicketRecord)

	tickets := make([]domain.Ticket, 0, len(records))
	for _, r := range records {
		tickets = append(tickets, domain.Ticket{
			Day:    r.Day.Uint64(),
			Number: r.Number.Uint64(),
		})
	}
	return tickets, nil
}

// DayInfo returns the settled record for a day. The contract returns the
// eight fields as one tuple; they are surfaced as one value so callers can
// never observe a partially applied day.
func (c *Client) DayInfo(ctx context.Context, day uint64) (domain.DayInfo, error) {
	out, err := c.call(ctx, "dayInfos", new(big.Int).SetUint64(day))
	if err != nil {
		return domain.DayInfo{}, err
	}

	drawTS := out[6].(*big.Int).Int64()
	info := domain.DayInfo{
		Day:           day,
		PotWei:        out[0].(*big.Int),
		EcoWei:        out[1].(*big.Int),
		Drawn:         out[2].(bool),
		Paid:          out[3].(bool),
		WinningNumber: out[4].(*big.Int).Uint64(),
		PrizeClaimed:  out[5].(bool),
		HasWinner:     out[7].(bool),
	}
	if drawTS > 0 {
		info.DrawTimestamp = time.Unix(drawTS, 0).UTC()
	}
	return info, nil
}

// Compile-time interface check.
var _ domain.ChainReader = (*Client)(nil)
