package selection

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/fbdash/internal/filter"
)

// Store is a client-local key-value store for encoded snapshots.
// Implemented by storage.Store.
type Store interface {
	PutSelection(key string, value []byte) error
	GetSelection(key string) (value []byte, ok bool, err error)
}

// Persister saves and restores the selection state of one client profile.
type Persister struct {
	store   Store
	key     string
	minDate time.Time
	maxDate time.Time
	logger  *slog.Logger
}

// NewPersister binds a store key. minDate and maxDate are the dataset's date
// range, used whenever a bound is missing on load.
func NewPersister(store Store, key string, minDate, maxDate time.Time) *Persister {
	return &Persister{
		store:   store,
		key:     key,
		minDate: minDate,
		maxDate: maxDate,
		logger:  slog.Default(),
	}
}

// Save overwrites the persisted record with st and returns what was written.
func (p *Persister) Save(st filter.State) (Snapshot, error) {
	snap := FromState(st)
	data, err := snap.Encode()
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding selection: %w", err)
	}
	if err := p.store.PutSelection(p.key, data); err != nil {
		return Snapshot{}, fmt.Errorf("saving selection %q: %w", p.key, err)
	}
	return snap, nil
}

// Load restores the persisted state. With no record it returns an unset
// state bounded by the dataset's date range and ok=false. Unparseable dates
// in a stored record fall back to the same defaults.
func (p *Persister) Load() (st filter.State, ok bool, err error) {
	data, found, err := p.store.GetSelection(p.key)
	if err != nil {
		return filter.State{}, false, fmt.Errorf("loading selection %q: %w", p.key, err)
	}
	if !found {
		return p.defaults(filter.State{}), false, nil
	}

	snap, err := Decode(data)
	if err != nil {
		p.logger.Warn("discarding unreadable selection", "key", p.key, "error", err)
		return p.defaults(filter.State{}), false, nil
	}

	st, err = snap.State()
	if err != nil {
		p.logger.Warn("ignoring stored date bounds", "key", p.key, "error", err)
		snap.FromDate, snap.ToDate = nil, nil
		st, _ = snap.State()
	}
	return p.defaults(st), true, nil
}

func (p *Persister) defaults(st filter.State) filter.State {
	return st.WithDateDefaults(p.minDate, p.maxDate)
}
