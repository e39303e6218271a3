// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rollupvm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/ids"
	"github.com/luxfi/utils/json"

	"github.com/luxfi/rollupvm/vms/rollupvm/executor"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

// Client calls the rollup JSON-RPC API. Errors reported by the contract wrap
// the matching executor error, so callers can use errors.Is.
type Client struct {
	endpoint   string
	namespace  string
	sender     CallerArgs
	httpClient *http.Client
}

// NewClient returns a client for the API served at endpoint under namespace.
func NewClient(endpoint, namespace string) *Client {
	return &Client{
		endpoint:  endpoint,
		namespace: namespace,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// As returns a copy of the client that signs calls as sender.
func (c *Client) As(sender ids.ShortID, kind txs.CallerKind) *Client {
	clone := *c
	clone.sender = CallerArgs{
		Sender:     sender.String(),
		SenderKind: kind.String(),
	}
	return &clone
}

func (c *Client) Deposit(ctx context.Context, amount uint64) error {
	return c.call(ctx, "deposit", &AmountArgs{
		CallerArgs: c.sender,
		Amount:     json.Uint64(amount),
	}, &EmptyReply{})
}

func (c *Client) Withdraw(ctx context.Context, amount uint64) error {
	return c.call(ctx, "withdraw", &AmountArgs{
		CallerArgs: c.sender,
		Amount:     json.Uint64(amount),
	}, &EmptyReply{})
}

func (c *Client) AddSettlement(ctx context.Context, transfer *txs.Transfer) (uint64, error) {
	reply := &AddSettlementReply{}
	err := c.call(ctx, "addSettlement", &AddSettlementArgs{
		CallerArgs: c.sender,
		APITransfer: APITransfer{
			SendTransfers:    toAPIAddressAmounts(transfer.SendTransfers),
			ReceiveTransfers: toAPIAddressAmounts(transfer.ReceiveTransfers),
			MetaData:         transfer.MetaData,
		},
	}, reply)
	return uint64(reply.ID), err
}

func (c *Client) Veto(ctx context.Context, id uint64) (bool, error) {
	reply := &VetoReply{}
	err := c.call(ctx, "veto", &VetoArgs{
		CallerArgs: c.sender,
		ID:         json.Uint64(id),
	}, reply)
	return reply.Vetoed, err
}

func (c *Client) ExecuteSettlements(ctx context.Context) (*ExecuteSettlementsReply, error) {
	reply := &ExecuteSettlementsReply{}
	return reply, c.call(ctx, "executeSettlements", &EmptyArgs{}, reply)
}

func (c *Client) SettledBalanceOf(ctx context.Context, addr ids.ShortID) (uint64, error) {
	reply := &BalanceReply{}
	err := c.call(ctx, "settledBalanceOf", &AddressArgs{Address: addr.String()}, reply)
	return uint64(reply.Balance), err
}

func (c *Client) BalanceOf(ctx context.Context, addr ids.ShortID) (uint64, error) {
	reply := &BalanceReply{}
	err := c.call(ctx, "balanceOf", &AddressArgs{Address: addr.String()}, reply)
	return uint64(reply.Balance), err
}

// GetSettlement returns nil if no settlement with id is queued.
func (c *Client) GetSettlement(ctx context.Context, id uint64) (*APISettlement, error) {
	reply := &GetSettlementReply{}
	if err := c.call(ctx, "getSettlement", &GetSettlementArgs{ID: json.Uint64(id)}, reply); err != nil {
		return nil, err
	}
	return reply.Settlement, nil
}

func (c *Client) PendingSettlements(ctx context.Context) ([]APISettlement, error) {
	reply := &PendingSettlementsReply{}
	return reply.Settlements, c.call(ctx, "pendingSettlements", &EmptyArgs{}, reply)
}

func (c *Client) Config(ctx context.Context) (*ConfigReply, error) {
	reply := &ConfigReply{}
	return reply, c.call(ctx, "config", &EmptyArgs{}, reply)
}

func (c *Client) Health(ctx context.Context) (*HealthReply, error) {
	reply := &HealthReply{}
	return reply, c.call(ctx, "health", &EmptyArgs{}, reply)
}

func (c *Client) call(ctx context.Context, method string, args, reply any) error {
	body, err := json2.EncodeClientRequest(c.namespace+"."+method, args)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	err = json2.DecodeClientResponse(resp.Body, reply)
	var rpcErr *json2.Error
	if errors.As(err, &rpcErr) {
		if contractErr := executor.FromCode(int32(rpcErr.Code)); contractErr != nil {
			return fmt.Errorf("%w: %s", contractErr, rpcErr.Message)
		}
		return fmt.Errorf("rpc error %d: %s", rpcErr.Code, rpcErr.Message)
	}
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
