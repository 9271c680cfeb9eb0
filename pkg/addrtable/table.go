package addrtable

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/henderiw/addrtable/pkg/addrrange"
)

type Table[T1 any] interface {
	Get(id uint64) (T1, error)
	Claim(id uint64, d T1) error
	ClaimDynamic(d T1) (uint64, error)
	ClaimRange(start, size uint64, d T1) error
	ClaimSize(size uint64, d T1) (addrrange.Range, error)
	Release(id uint64) error
	ReleaseRange(rng addrrange.Range) error
	Update(id uint64, d T1) error

	Iterate() *Iterator[T1]

	Count() int
	Has(id uint64) bool

	IsFree(id uint64) bool
	FindFree() (uint64, error)
	FindFreeRange(start, size uint64) (addrrange.Range, error)
	FindFreeSize(size uint64) (addrrange.Range, error)

	FreeRanges() []addrrange.Range
	ClaimedRanges() []addrrange.Range

	GetAll() map[uint64]T1
}

type ValidationFn func(id uint64) error

func NewTable[T1 any](window addrrange.Range, initEntries map[uint64]T1, v ValidationFn) (Table[T1], error) {
	if window.IsEmpty() {
		return nil, fmt.Errorf("window is empty")
	}
	r := &table[T1]{
		m:          new(sync.RWMutex),
		table:      map[uint64]T1{},
		claimed:    addrrange.NewSet(),
		window:     window,
		validateFn: v,
	}

	var errm error
	for id, d := range initEntries {
		id := id
		if err := r.add(id, d, true); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type table[T1 any] struct {
	m          *sync.RWMutex
	table      map[uint64]T1
	claimed    *addrrange.Set
	window     addrrange.Range
	validateFn ValidationFn
}

func (r *table[T1]) validate(id uint64, init bool) error {
	if !r.window.Covers(id) {
		return fmt.Errorf("id %d does not fit in the window from %d to %d", id, r.window.From(), r.window.To())
	}
	if r.validateFn != nil && !init {
		if err := r.validateFn(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T1]) Get(id uint64) (T1, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	var d T1

	if err := r.validate(id, false); err != nil {
		return d, err
	}

	d, ok := r.table[id]
	if !ok {
		return d, fmt.Errorf("no match found for: %v", id)
	}
	return d, nil
}

func (r *table[T1]) Claim(id uint64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.add(id, d, false)
}

func (r *table[T1]) ClaimDynamic(d T1) (uint64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.findFree()
	if err != nil {
		return 0, err
	}
	if err := r.add(id, d, false); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *table[T1]) ClaimRange(start, size uint64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	rng, err := r.findFreeRange(start, size)
	if err != nil {
		return err
	}
	return r.addRange(rng, d)
}

func (r *table[T1]) ClaimSize(size uint64, d T1) (addrrange.Range, error) {
	r.m.Lock()
	defer r.m.Unlock()

	rng, err := r.findFreeSize(size)
	if err != nil {
		return addrrange.Empty(), err
	}
	if err := r.addRange(rng, d); err != nil {
		return addrrange.Empty(), err
	}
	return rng, nil
}

func (r *table[T1]) Release(id uint64) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.delete(id)
}

func (r *table[T1]) ReleaseRange(rng addrrange.Range) error {
	r.m.Lock()
	defer r.m.Unlock()

	if rng.IsEmpty() {
		return nil
	}
	var errm error
	for _, e := range r.claimed.Ranges() {
		if !e.Overlaps(rng) {
			continue
		}
		from, to := e.From(), e.To()
		if from < rng.From() {
			from = rng.From()
		}
		if to > rng.To() {
			to = rng.To()
		}
		for id := from; ; id++ {
			if err := r.delete(id); err != nil {
				errm = errors.Join(errm, err)
			}
			if id == to {
				break
			}
		}
	}
	return errm
}

func (r *table[T1]) Update(id uint64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.update(id, d)
}

func (r *table[T1]) Iterate() *Iterator[T1] {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.iterate()
}

func (r *table[T1]) iterate() *Iterator[T1] {
	keys := make([]uint64, 0, len(r.table))
	for key := range r.table {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i int, j int) bool {
		return keys[i] < keys[j]
	})

	return &Iterator[T1]{current: -1, keys: keys, table: r.table}
}

func (r *table[T1]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.table)
}

func (r *table[T1]) Has(id uint64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.table[id]
	return ok
}

func (r *table[T1]) IsFree(id uint64) bool {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.isFree(id)
}

func (r *table[T1]) isFree(id uint64) bool {
	_, ok := r.table[id]
	return !ok
}

func (r *table[T1]) FindFree() (uint64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFree()
}

func (r *table[T1]) findFree() (uint64, error) {
	gaps := r.claimed.Gaps(r.window)
	if len(gaps) == 0 {
		return 0, fmt.Errorf("no free entry found")
	}
	return gaps[0].From(), nil
}

func (r *table[T1]) FindFreeRange(start, size uint64) (addrrange.Range, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeRange(start, size)
}

func (r *table[T1]) findFreeRange(start, size uint64) (addrrange.Range, error) {
	rng, err := addrrange.New(start, size)
	if err != nil {
		return addrrange.Empty(), err
	}
	if rng.IsEmpty() {
		return addrrange.Empty(), fmt.Errorf("cannot find a free range of size 0")
	}
	if !r.window.Contains(rng) {
		return addrrange.Empty(), fmt.Errorf("range %s does not fit in the window from %d to %d", rng, r.window.From(), r.window.To())
	}
	for _, gap := range r.claimed.Gaps(r.window) {
		if gap.Contains(rng) {
			return rng, nil
		}
	}
	return addrrange.Empty(), fmt.Errorf("could not find free range that fits in start %d, size %d", start, size)
}

func (r *table[T1]) FindFreeSize(size uint64) (addrrange.Range, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeSize(size)
}

func (r *table[T1]) findFreeSize(size uint64) (addrrange.Range, error) {
	if size == 0 {
		return addrrange.Empty(), fmt.Errorf("cannot find a free range of size 0")
	}
	for _, gap := range r.claimed.Gaps(r.window) {
		if gap.Size() >= size {
			return addrrange.FromTo(gap.From(), gap.From()+size-1), nil
		}
	}
	return addrrange.Empty(), fmt.Errorf("could not find free entries that fit in size %d", size)
}

func (r *table[T1]) FreeRanges() []addrrange.Range {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.Gaps(r.window)
}

func (r *table[T1]) ClaimedRanges() []addrrange.Range {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.Ranges()
}

func (r *table[T1]) add(id uint64, d T1, init bool) error {
	if err := r.validate(id, init); err != nil {
		return err
	}
	if !r.isFree(id) {
		return fmt.Errorf("entry %d already exists", id)
	}
	r.table[id] = d
	r.claimed.Insert(addrrange.FromTo(id, id))
	return nil
}

func (r *table[T1]) addRange(rng addrrange.Range, d T1) error {
	for id := rng.From(); ; id++ {
		// getting an error is unlikely as we have a lock
		if err := r.add(id, d, false); err != nil {
			return err
		}
		if id == rng.To() {
			break
		}
	}
	return nil
}

func (r *table[T1]) update(id uint64, d T1) error {
	if err := r.validate(id, false); err != nil {
		return err
	}
	if r.isFree(id) {
		return fmt.Errorf("entry %d not found", id)
	}
	r.table[id] = d
	return nil
}

func (r *table[T1]) delete(id uint64) error {
	if err := r.validate(id, false); err != nil {
		return err
	}
	delete(r.table, id)
	r.claimed.Remove(addrrange.FromTo(id, id))
	return nil
}

func (r *table[T1]) GetAll() map[uint64]T1 {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(map[uint64]T1, len(r.table))

	iter := r.iterate()
	for iter.Next() {
		entries[iter.ID()] = iter.Value()
	}
	return entries
}
