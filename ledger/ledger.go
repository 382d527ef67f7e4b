// Package ledger keeps native currency balances in the shared state store.
//
// Every account has a free and a reserved balance. Reserved funds are bonded
// (the registry reserves one deposit per owned asset) and cannot be spent
// until unreserved. Balances live in the same key-value store as the registry,
// so a balance change made inside a flushable overlay is committed or dropped
// together with the registry's own writes.
package ledger

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rony4d/opera-collectibles/inter"
)

var (
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrKeepAlive           = errors.New("ledger: transfer would kill account")
	ErrExistentialDeposit  = errors.New("ledger: value too low to create account")
	ErrOverflow            = errors.New("ledger: balance overflow")
)

// ExistenceRequirement tells Transfer whether the sender may be reaped.
type ExistenceRequirement uint8

const (
	// KeepAlive refuses transfers that leave the sender below the existential deposit.
	KeepAlive ExistenceRequirement = iota
	// AllowDeath lets the sender drop below the existential deposit; its free dust is burned.
	AllowDeath
)

// Currency is a fungible balance holder.
type Currency interface {
	FreeBalance(who common.Address) inter.Balance
	Transfer(from, to common.Address, amount inter.Balance, req ExistenceRequirement) error
}

// ReservableCurrency is a Currency whose funds can be bonded.
type ReservableCurrency interface {
	Currency
	ReservedBalance(who common.Address) inter.Balance
	// Reserve moves amount from free to reserved.
	Reserve(who common.Address, amount inter.Balance) error
	// Unreserve moves up to amount from reserved back to free and returns
	// the part that could not be unreserved.
	Unreserve(who common.Address, amount inter.Balance) inter.Balance
}

// AccountIterator is a currency that can enumerate its accounts.
type AccountIterator interface {
	ForEachAccount(fn func(who common.Address) bool)
}

var _ AccountIterator = (*Ledger)(nil)

// Ledger is the kvdb-backed ReservableCurrency.
type Ledger struct {
	table struct {
		Free     kvdb.Store `table:"lf"`
		Reserved kvdb.Store `table:"lr"`
	}
	existentialDeposit inter.Balance
}

// New binds a ledger to db. Binding is cheap, so callers bind a fresh ledger
// to every overlay they open.
func New(db kvdb.Store, existentialDeposit inter.Balance) *Ledger {
	l := &Ledger{existentialDeposit: existentialDeposit}
	table.MigrateTables(&l.table, db)
	return l
}

// ExistentialDeposit returns the minimum total balance of a live account.
func (l *Ledger) ExistentialDeposit() inter.Balance {
	return l.existentialDeposit
}

// FreeBalance returns the spendable balance of who.
func (l *Ledger) FreeBalance(who common.Address) inter.Balance {
	return l.get(l.table.Free, who)
}

// ReservedBalance returns the bonded balance of who.
func (l *Ledger) ReservedBalance(who common.Address) inter.Balance {
	return l.get(l.table.Reserved, who)
}

// TotalBalance returns free plus reserved.
func (l *Ledger) TotalBalance(who common.Address) inter.Balance {
	return l.FreeBalance(who) + l.ReservedBalance(who)
}

// Deposit credits who with newly issued funds.
func (l *Ledger) Deposit(who common.Address, amount inter.Balance) error {
	free := l.FreeBalance(who)
	if free+amount < free {
		return ErrOverflow
	}
	l.set(l.table.Free, who, free+amount)
	return nil
}

// Transfer moves amount of free balance from one account to another.
// A zero amount or a transfer to self is a no-op.
func (l *Ledger) Transfer(from, to common.Address, amount inter.Balance, req ExistenceRequirement) error {
	if amount == 0 || from == to {
		return nil
	}

	fromFree := l.FreeBalance(from)
	if fromFree < amount {
		return ErrInsufficientBalance
	}
	fromFree -= amount
	fromTotal := fromFree + l.ReservedBalance(from)
	if req == KeepAlive && fromTotal < l.existentialDeposit {
		return ErrKeepAlive
	}

	toFree := l.FreeBalance(to)
	if toFree+amount < toFree {
		return ErrOverflow
	}
	toFree += amount
	if toFree+l.ReservedBalance(to) < l.existentialDeposit {
		return ErrExistentialDeposit
	}

	if fromTotal < l.existentialDeposit {
		// reaped: dust is burned
		fromFree = 0
	}
	l.set(l.table.Free, from, fromFree)
	l.set(l.table.Free, to, toFree)
	return nil
}

// Reserve moves amount of who's free balance to reserved.
func (l *Ledger) Reserve(who common.Address, amount inter.Balance) error {
	free := l.FreeBalance(who)
	if free < amount {
		return ErrInsufficientBalance
	}
	reserved := l.ReservedBalance(who)
	if reserved+amount < reserved {
		return ErrOverflow
	}
	l.set(l.table.Free, who, free-amount)
	l.set(l.table.Reserved, who, reserved+amount)
	return nil
}

// Unreserve moves up to amount of who's reserved balance back to free.
// It never fails; the returned remainder is what could not be unreserved.
func (l *Ledger) Unreserve(who common.Address, amount inter.Balance) inter.Balance {
	reserved := l.ReservedBalance(who)
	actual := amount
	if actual > reserved {
		actual = reserved
	}
	if actual == 0 {
		return amount
	}
	l.set(l.table.Reserved, who, reserved-actual)
	l.set(l.table.Free, who, l.FreeBalance(who)+actual)
	return amount - actual
}

// ForEachAccount calls fn for every account holding a free or reserved balance.
func (l *Ledger) ForEachAccount(fn func(who common.Address) bool) {
	seen := make(map[common.Address]struct{})
	for _, t := range []kvdb.Store{l.table.Free, l.table.Reserved} {
		it := t.NewIterator(nil, nil)
		for it.Next() {
			who := common.BytesToAddress(it.Key())
			if _, ok := seen[who]; ok {
				continue
			}
			seen[who] = struct{}{}
			if !fn(who) {
				it.Release()
				return
			}
		}
		if it.Error() != nil {
			log.Crit("Failed to iterate balances", "err", it.Error())
		}
		it.Release()
	}
}

func (l *Ledger) get(t kvdb.Store, who common.Address) inter.Balance {
	b, err := t.Get(who.Bytes())
	if err != nil {
		log.Crit("Failed to get balance", "err", err)
	}
	if b == nil {
		return 0
	}
	return inter.Balance(bigendian.BytesToUint64(b))
}

func (l *Ledger) set(t kvdb.Store, who common.Address, v inter.Balance) {
	var err error
	if v == 0 {
		err = t.Delete(who.Bytes())
	} else {
		err = t.Put(who.Bytes(), bigendian.Uint64ToBytes(uint64(v)))
	}
	if err != nil {
		log.Crit("Failed to put balance", "err", err)
	}
}
