// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists the contract: its configuration, the id counter, the
// balance sheet and the settlement queue.
package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/rollupvm/vms/rollupvm/txs"

	safemath "github.com/luxfi/rollupvm/utils/math"
)

var (
	ErrNotInitialized = errors.New("contract not initialized")
	ErrCorrupted      = errors.New("state corrupted")
	ErrDuplicateID    = errors.New("settlement id already queued")

	MetaPrefix       = []byte("meta")
	BalancePrefix    = []byte("balance")
	SettlementPrefix = []byte("settlement")

	ConfigKey   = []byte("config")
	NextIDKey   = []byte("nextID")
	QueueLenKey = []byte("queueLen")
)

// State reads and writes the contract through db. It holds no cached values,
// so every read observes the writes made earlier through the same db.
type State struct {
	metaDB       database.Database
	balanceDB    database.Database
	settlementDB database.Database
}

func New(db database.Database) *State {
	return &State{
		metaDB:       prefixdb.New(MetaPrefix, db),
		balanceDB:    prefixdb.New(BalancePrefix, db),
		settlementDB: prefixdb.New(SettlementPrefix, db),
	}
}

func (s *State) IsInitialized() (bool, error) {
	return s.metaDB.Has(ConfigKey)
}

func (s *State) GetConfig() (*txs.ContractConfig, error) {
	b, err := s.metaDB.Get(ConfigKey)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	cfg, err := txs.ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%w: config: %w", ErrCorrupted, err)
	}
	return cfg, nil
}

func (s *State) PutConfig(cfg *txs.ContractConfig) error {
	b, err := txs.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.metaDB.Put(ConfigKey, b)
}

// NextID returns the id the next settlement will receive.
func (s *State) NextID() (uint64, error) {
	return getUInt64(s.metaDB, NextIDKey)
}

func (s *State) SetNextID(id uint64) error {
	return database.PutUInt64(s.metaDB, NextIDKey, id)
}

// QueueLen returns the number of queued settlements.
func (s *State) QueueLen() (uint64, error) {
	return getUInt64(s.metaDB, QueueLenKey)
}

// GetBalance returns the balance of addr and whether the balance sheet has an
// entry for it.
func (s *State) GetBalance(addr ids.ShortID) (uint64, bool, error) {
	balance, err := database.GetUInt64(s.balanceDB, addr[:])
	switch {
	case errors.Is(err, database.ErrNotFound):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("%w: balance of %s: %w", ErrCorrupted, addr, err)
	default:
		return balance, true, nil
	}
}

// SetBalance creates or overwrites the entry of addr. Entries are never
// removed, a zero balance is stored as such.
func (s *State) SetBalance(addr ids.ShortID, balance uint64) error {
	return database.PutUInt64(s.balanceDB, addr[:], balance)
}

// AddSettlement appends settlement to the end of the queue. Ids are allocated
// in increasing order, so appending is a keyed insert.
func (s *State) AddSettlement(settlement *txs.Settlement) error {
	key := database.PackUInt64(settlement.ID)
	has, err := s.settlementDB.Has(key)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %d", ErrDuplicateID, settlement.ID)
	}
	b, err := txs.Marshal(settlement)
	if err != nil {
		return err
	}
	if err := s.settlementDB.Put(key, b); err != nil {
		return err
	}
	return s.adjustQueueLen(true)
}

// GetSettlement returns database.ErrNotFound if id is not queued.
func (s *State) GetSettlement(id uint64) (*txs.Settlement, error) {
	b, err := s.settlementDB.Get(database.PackUInt64(id))
	if err != nil {
		return nil, err
	}
	return parseSettlement(b)
}

// DeleteSettlement removes id from the queue. Removing an absent id is a
// no-op.
func (s *State) DeleteSettlement(id uint64) error {
	key := database.PackUInt64(id)
	has, err := s.settlementDB.Has(key)
	if err != nil || !has {
		return err
	}
	if err := s.settlementDB.Delete(key); err != nil {
		return err
	}
	return s.adjustQueueLen(false)
}

// Settlements returns the queue in insertion order.
func (s *State) Settlements() ([]*txs.Settlement, error) {
	var settlements []*txs.Settlement
	err := s.forEachSettlement(func(settlement *txs.Settlement) error {
		settlements = append(settlements, settlement)
		return nil
	})
	return settlements, err
}

// Liabilities returns the total addr sends across every queued settlement,
// final or not. Pending incoming amounts are not netted against it.
func (s *State) Liabilities(addr ids.ShortID) (uint64, error) {
	var liabilities uint64
	err := s.forEachSettlement(func(settlement *txs.Settlement) error {
		outgoing, err := settlement.Transfer.Outgoing(addr)
		if err != nil {
			return err
		}
		liabilities, err = safemath.Add(liabilities, outgoing)
		return err
	})
	return liabilities, err
}

func (s *State) forEachSettlement(f func(*txs.Settlement) error) error {
	it := s.settlementDB.NewIterator()
	defer it.Release()

	for it.Next() {
		settlement, err := parseSettlement(it.Value())
		if err != nil {
			return err
		}
		if err := f(settlement); err != nil {
			return err
		}
	}
	return it.Error()
}

func (s *State) adjustQueueLen(increment bool) error {
	length, err := s.QueueLen()
	if err != nil {
		return err
	}
	if increment {
		length, err = safemath.Add(length, 1)
	} else {
		length, err = safemath.Sub(length, 1)
	}
	if err != nil {
		return fmt.Errorf("%w: queue length: %w", ErrCorrupted, err)
	}
	return database.PutUInt64(s.metaDB, QueueLenKey, length)
}

func getUInt64(db database.KeyValueReader, key []byte) (uint64, error) {
	v, err := database.GetUInt64(db, key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("%w: %s: %w", ErrCorrupted, key, err)
	default:
		return v, nil
	}
}

func parseSettlement(b []byte) (*txs.Settlement, error) {
	settlement := &txs.Settlement{}
	if err := txs.Unmarshal(b, settlement); err != nil {
		return nil, fmt.Errorf("%w: settlement: %w", ErrCorrupted, err)
	}
	return settlement, nil
}
