// Package registry implements the collectible asset registry: minting,
// pricing, transfer, purchase and breeding of uniquely identified assets.
//
// Every owned asset bonds a fixed deposit against its owner's balance. The
// deposit moves with the asset on every ownership change.
//
// Each operation runs in its own flushable overlay of the state store. The
// overlay is flushed when the operation succeeds and dropped when it fails,
// so registry writes, deposit reservations and payments are committed or
// discarded together. Notifications are buffered in the overlay's scope and
// only sent after a commit.
package registry

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/ledger"
	"github.com/rony4d/opera-collectibles/opera"
	"github.com/rony4d/opera-collectibles/randomness"
)

// CurrencyBinder returns the currency view of a state store. The registry
// binds it to every overlay it opens so balance changes share the overlay.
type CurrencyBinder func(db kvdb.Store) ledger.ReservableCurrency

// Context reports where in the chain an operation runs.
type Context interface {
	BlockNumber() idx.Block
	ExtrinsicIndex() (uint32, bool)
}

// Notification is an event of a committed operation, stamped with the
// block and extrinsic it was applied in.
type Notification struct {
	Block     idx.Block
	Extrinsic uint32
	Event     inter.Event
}

// Registry is the collectible asset registry.
type Registry struct {
	rules    opera.RegistryRules
	db       kvdb.Store
	currency CurrencyBinder
	random   randomness.Source
	ctx      Context
	log      logrus.FieldLogger

	mu    sync.Mutex
	feed  event.Feed
	scope event.SubscriptionScope
}

// New returns a registry over db.
func New(db kvdb.Store, rules opera.RegistryRules, currency CurrencyBinder, random randomness.Source, ctx Context, logger logrus.FieldLogger) *Registry {
	return &Registry{
		rules:    rules,
		db:       db,
		currency: currency,
		random:   random,
		ctx:      ctx,
		log:      logger.WithField("module", "registry"),
	}
}

// Rules returns the registry rules.
func (r *Registry) Rules() opera.RegistryRules {
	return r.rules
}

// SubscribeNotifications delivers notifications of committed operations to ch.
func (r *Registry) SubscribeNotifications(ch chan<- Notification) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (r *Registry) Close() {
	r.scope.Close()
}

// Asset returns the asset with id, or nil.
func (r *Registry) Asset(id inter.AssetID) *inter.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store(r.db).GetAsset(id)
}

// AssetsOwned returns the ids owned by who, in index order.
func (r *Registry) AssetsOwned(who common.Address) []inter.AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store(r.db).AssetsOwned(who).IDs()
}

// Count returns the number of assets ever created.
func (r *Registry) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store(r.db).GetCount()
}

func (r *Registry) store(db kvdb.Store) *Store {
	return NewStore(db, r.rules.MaxOwned)
}

// txn is one atomic scope: an overlay with the store and currency bound to it.
type txn struct {
	r        *Registry
	overlay  *flushable.Flushable
	store    *Store
	currency ledger.ReservableCurrency
	events   []inter.Event
}

func (r *Registry) begin(parent kvdb.Store) *txn {
	overlay := flushable.Wrap(parent)
	return &txn{
		r:        r,
		overlay:  overlay,
		store:    r.store(overlay),
		currency: r.currency(overlay),
	}
}

func (tx *txn) emit(e inter.Event) {
	tx.events = append(tx.events, e)
}

// nested runs fn in a child scope. A failing fn leaves tx untouched.
func (tx *txn) nested(fn func(tx *txn) error) error {
	inner := tx.r.begin(tx.overlay)
	if err := fn(inner); err != nil {
		inner.overlay.DropNotFlushed()
		return err
	}
	if err := inner.overlay.Flush(); err != nil {
		return err
	}
	tx.events = append(tx.events, inner.events...)
	return nil
}

// transactional runs fn in a fresh scope over the root store, commits on
// success and sends the buffered notifications.
func (r *Registry) transactional(fn func(tx *txn) error) ([]inter.Event, error) {
	events, err := r.commit(fn)
	if err != nil {
		return nil, err
	}
	r.notify(events)
	return events, nil
}

// commit applies fn under the registry lock. The root store is only written
// by the final flush, so a panicking fn leaves it untouched.
func (r *Registry) commit(fn func(tx *txn) error) ([]inter.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := r.begin(r.db)
	if err := fn(tx); err != nil {
		tx.overlay.DropNotFlushed()
		return nil, err
	}
	if err := tx.overlay.Flush(); err != nil {
		log.Crit("Failed to flush registry state", "err", err)
	}
	return tx.events, nil
}

func (r *Registry) notify(events []inter.Event) {
	block := r.ctx.BlockNumber()
	extrinsic, _ := r.ctx.ExtrinsicIndex()
	for _, e := range events {
		r.feed.Send(Notification{
			Block:     block,
			Extrinsic: extrinsic,
			Event:     e,
		})
	}
}

// ownedAsset loads id and checks that caller owns it.
func (tx *txn) ownedAsset(caller common.Address, id inter.AssetID) (*inter.Asset, error) {
	asset := tx.store.GetAsset(id)
	if asset == nil {
		return nil, &OwnershipError{Caller: caller, ID: id, Missing: true}
	}
	if asset.Owner != caller {
		return nil, &OwnershipError{Caller: caller, ID: id}
	}
	return asset, nil
}
