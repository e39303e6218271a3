// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rollupvm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/ids"
	"github.com/luxfi/utils/json"

	"github.com/luxfi/rollupvm/vms/rollupvm/executor"
	"github.com/luxfi/rollupvm/vms/rollupvm/txs"
)

var (
	errInvalidAddress    = errors.New("invalid address")
	errInvalidSenderKind = errors.New("invalid sender kind")
)

// Service is the JSON-RPC API of the rollup VM. Caller identity is taken from
// the request as given; authenticating it is left to the host.
type Service struct {
	vm *VM
}

// CallerArgs identifies who is invoking an operation.
type CallerArgs struct {
	Sender string `json:"sender"`
	// SenderKind is "account" (the default) or "contract".
	SenderKind string `json:"senderKind"`
}

func (a *CallerArgs) caller() (txs.Caller, error) {
	addr, err := parseAddress(a.Sender)
	if err != nil {
		return txs.Caller{}, err
	}
	switch a.SenderKind {
	case "", txs.Account.String():
		return txs.AccountCaller(addr), nil
	case txs.Contract.String():
		return txs.ContractCaller(addr), nil
	default:
		return txs.Caller{}, fmt.Errorf("%w: %w: %q", executor.ErrParseParams, errInvalidSenderKind, a.SenderKind)
	}
}

type AmountArgs struct {
	CallerArgs
	Amount json.Uint64 `json:"amount"`
}

type EmptyArgs struct{}

type EmptyReply struct{}

// Deposit credits the attached amount to the sender.
func (s *Service) Deposit(r *http.Request, args *AmountArgs, _ *EmptyReply) error {
	caller, err := args.caller()
	if err != nil {
		return apiError(err)
	}
	return apiError(s.vm.Deposit(r.Context(), caller, uint64(args.Amount)))
}

// Withdraw pays out of the sender's settled balance.
func (s *Service) Withdraw(r *http.Request, args *AmountArgs, _ *EmptyReply) error {
	caller, err := args.caller()
	if err != nil {
		return apiError(err)
	}
	return apiError(s.vm.Withdraw(r.Context(), caller, uint64(args.Amount)))
}

type APIAddressAmount struct {
	Address string      `json:"address"`
	Amount  json.Uint64 `json:"amount"`
}

type APITransfer struct {
	SendTransfers    []APIAddressAmount `json:"sendTransfers"`
	ReceiveTransfers []APIAddressAmount `json:"receiveTransfers"`
	MetaData         []byte             `json:"metaData"`
}

type APISettlement struct {
	ID           json.Uint64 `json:"id"`
	Transfer     APITransfer `json:"transfer"`
	FinalityTime json.Uint64 `json:"finalityTime"`
}

type AddSettlementArgs struct {
	CallerArgs
	APITransfer
}

type AddSettlementReply struct {
	ID json.Uint64 `json:"id"`
}

// AddSettlement queues a transfer. Only the validator may call it.
func (s *Service) AddSettlement(r *http.Request, args *AddSettlementArgs, reply *AddSettlementReply) error {
	caller, err := args.caller()
	if err != nil {
		return apiError(err)
	}
	transfer, err := args.APITransfer.toTransfer()
	if err != nil {
		return apiError(err)
	}
	id, err := s.vm.AddSettlement(r.Context(), caller, transfer)
	if err != nil {
		return apiError(err)
	}
	reply.ID = json.Uint64(id)
	return nil
}

type VetoArgs struct {
	CallerArgs
	ID json.Uint64 `json:"id"`
}

type VetoReply struct {
	Vetoed bool `json:"vetoed"`
}

// Veto removes a settlement during its dispute window. Only the judge may
// call it.
func (s *Service) Veto(r *http.Request, args *VetoArgs, reply *VetoReply) error {
	caller, err := args.caller()
	if err != nil {
		return apiError(err)
	}
	reply.Vetoed, err = s.vm.Veto(r.Context(), caller, uint64(args.ID))
	return apiError(err)
}

type ExecuteSettlementsReply struct {
	Applied   []json.Uint64 `json:"applied"`
	Rejected  []json.Uint64 `json:"rejected"`
	Remaining json.Uint64   `json:"remaining"`
}

// ExecuteSettlements resolves every settlement past its dispute window.
func (s *Service) ExecuteSettlements(r *http.Request, _ *EmptyArgs, reply *ExecuteSettlementsReply) error {
	result, err := s.vm.ExecuteSettlements(r.Context())
	if err != nil {
		return apiError(err)
	}
	reply.Applied = toJSONUint64s(result.Applied)
	reply.Rejected = toJSONUint64s(result.Rejected)
	reply.Remaining = json.Uint64(result.Remaining)
	return nil
}

type AddressArgs struct {
	Address string `json:"address"`
}

type BalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

// SettledBalanceOf returns the balance minus every queued outgoing amount.
func (s *Service) SettledBalanceOf(r *http.Request, args *AddressArgs, reply *BalanceReply) error {
	addr, err := parseAddress(args.Address)
	if err != nil {
		return apiError(err)
	}
	balance, err := s.vm.SettledBalanceOf(r.Context(), addr)
	reply.Balance = json.Uint64(balance)
	return apiError(err)
}

// BalanceOf returns the raw balance sheet entry.
func (s *Service) BalanceOf(r *http.Request, args *AddressArgs, reply *BalanceReply) error {
	addr, err := parseAddress(args.Address)
	if err != nil {
		return apiError(err)
	}
	balance, err := s.vm.BalanceOf(r.Context(), addr)
	reply.Balance = json.Uint64(balance)
	return apiError(err)
}

type GetSettlementArgs struct {
	ID json.Uint64 `json:"id"`
}

type GetSettlementReply struct {
	Found      bool           `json:"found"`
	Settlement *APISettlement `json:"settlement,omitempty"`
}

func (s *Service) GetSettlement(r *http.Request, args *GetSettlementArgs, reply *GetSettlementReply) error {
	settlement, found, err := s.vm.GetSettlement(r.Context(), uint64(args.ID))
	if err != nil {
		return apiError(err)
	}
	reply.Found = found
	if found {
		apiSettlement := toAPISettlement(settlement)
		reply.Settlement = &apiSettlement
	}
	return nil
}

type PendingSettlementsReply struct {
	Settlements []APISettlement `json:"settlements"`
}

func (s *Service) PendingSettlements(r *http.Request, _ *EmptyArgs, reply *PendingSettlementsReply) error {
	settlements, err := s.vm.PendingSettlements(r.Context())
	if err != nil {
		return apiError(err)
	}
	reply.Settlements = make([]APISettlement, len(settlements))
	for i, settlement := range settlements {
		reply.Settlements[i] = toAPISettlement(settlement)
	}
	return nil
}

type ConfigReply struct {
	Validator       string      `json:"validator"`
	Judge           string      `json:"judge"`
	TimeToFinality  json.Uint64 `json:"timeToFinality"`
	SettlementLimit json.Uint32 `json:"settlementLimit"`
}

func (s *Service) Config(r *http.Request, _ *EmptyArgs, reply *ConfigReply) error {
	cfg, err := s.vm.ContractConfig(r.Context())
	if err != nil {
		return apiError(err)
	}
	reply.Validator = cfg.Validator.String()
	reply.Judge = cfg.Judge.String()
	reply.TimeToFinality = json.Uint64(cfg.TimeToFinality)
	reply.SettlementLimit = json.Uint32(cfg.SettlementLimit)
	return nil
}

type HealthReply struct {
	State   string `json:"state"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

func (s *Service) Health(r *http.Request, _ *EmptyArgs, reply *HealthReply) error {
	vmState, err := s.vm.Health(r.Context())
	reply.State = vmState.String()
	reply.Healthy = err == nil
	if err != nil {
		reply.Error = err.Error()
	}
	return nil
}

// apiError attaches the contract's error code so clients can match on it.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	return &json2.Error{
		Code:    json2.ErrorCode(executor.Code(err)),
		Message: err.Error(),
	}
}

func parseAddress(s string) (ids.ShortID, error) {
	addr, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("%w: %w %q: %w", executor.ErrParseParams, errInvalidAddress, s, err)
	}
	return addr, nil
}

func (t *APITransfer) toTransfer() (*txs.Transfer, error) {
	sends, err := toAddressAmounts(t.SendTransfers)
	if err != nil {
		return nil, err
	}
	receives, err := toAddressAmounts(t.ReceiveTransfers)
	if err != nil {
		return nil, err
	}
	return &txs.Transfer{
		SendTransfers:    sends,
		ReceiveTransfers: receives,
		MetaData:         t.MetaData,
	}, nil
}

func toAddressAmounts(entries []APIAddressAmount) ([]txs.AddressAmount, error) {
	amounts := make([]txs.AddressAmount, len(entries))
	for i, entry := range entries {
		addr, err := parseAddress(entry.Address)
		if err != nil {
			return nil, err
		}
		amounts[i] = txs.AddressAmount{
			Address: addr,
			Amount:  uint64(entry.Amount),
		}
	}
	return amounts, nil
}

func toAPIAddressAmounts(entries []txs.AddressAmount) []APIAddressAmount {
	amounts := make([]APIAddressAmount, len(entries))
	for i, entry := range entries {
		amounts[i] = APIAddressAmount{
			Address: entry.Address.String(),
			Amount:  json.Uint64(entry.Amount),
		}
	}
	return amounts
}

func toAPISettlement(s *txs.Settlement) APISettlement {
	return APISettlement{
		ID: json.Uint64(s.ID),
		Transfer: APITransfer{
			SendTransfers:    toAPIAddressAmounts(s.Transfer.SendTransfers),
			ReceiveTransfers: toAPIAddressAmounts(s.Transfer.ReceiveTransfers),
			MetaData:         s.Transfer.MetaData,
		},
		FinalityTime: json.Uint64(s.FinalityTime),
	}
}

func toJSONUint64s(values []uint64) []json.Uint64 {
	out := make([]json.Uint64, len(values))
	for i, v := range values {
		out[i] = json.Uint64(v)
	}
	return out
}
