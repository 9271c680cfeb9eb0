package table

import (
	"fmt"

	"github.com/henderiw/addrtable/pkg/addrrange"
	"github.com/henderiw/addrtable/pkg/addrtable"
	"k8s.io/apimachinery/pkg/labels"
)

type Table interface {
	Get(id uint64) (Entry, error)
	Claim(id uint64, labels labels.Set) error
	ClaimFree(labels labels.Set) (Entry, error)
	ClaimRange(start, size uint64, labels labels.Set) error
	Release(id uint64) error
	Update(id uint64, labels labels.Set) error
	Count() int
	Has(id uint64) bool
	IsFree(id uint64) bool
	FindFree() (uint64, error)
	FreeRanges() []addrrange.Range
	GetAll() Entries
	GetByLabel(selector labels.Selector) Entries
}

func New(window addrrange.Range, initEntries map[uint64]labels.Set, v addrtable.ValidationFn) (Table, error) {
	t, err := addrtable.NewTable[labels.Set](window, initEntries, v)
	if err != nil {
		return nil, err
	}
	return &labelTable{
		table:  t,
		window: window,
	}, nil
}

type labelTable struct {
	table  addrtable.Table[labels.Set]
	window addrrange.Range
}

func (r *labelTable) Get(id uint64) (Entry, error) {
	d, err := r.table.Get(id)
	if err != nil {
		return nil, err
	}
	return NewEntry(id, d), nil
}

func (r *labelTable) Claim(id uint64, d labels.Set) error {
	if !r.table.IsFree(id) {
		return fmt.Errorf("claim failed id %d already claimed", id)
	}
	return r.table.Claim(id, d)
}

func (r *labelTable) ClaimFree(d labels.Set) (Entry, error) {
	id, err := r.table.ClaimDynamic(d)
	if err != nil {
		return nil, err
	}
	return NewEntry(id, d), nil
}

func (r *labelTable) ClaimRange(start, size uint64, d labels.Set) error {
	return r.table.ClaimRange(start, size, d)
}

func (r *labelTable) Release(id uint64) error {
	return r.table.Release(id)
}

func (r *labelTable) Update(id uint64, d labels.Set) error {
	return r.table.Update(id, d)
}

func (r *labelTable) Count() int {
	return r.table.Count()
}

func (r *labelTable) Has(id uint64) bool {
	return r.table.Has(id)
}

func (r *labelTable) IsFree(id uint64) bool {
	return r.table.IsFree(id)
}

func (r *labelTable) FindFree() (uint64, error) {
	return r.table.FindFree()
}

func (r *labelTable) FreeRanges() []addrrange.Range {
	return r.table.FreeRanges()
}

func (r *labelTable) GetAll() Entries {
	entries := make(Entries, 0, r.table.Count())

	iter := r.table.Iterate()
	for iter.Next() {
		entries = append(entries, NewEntry(iter.ID(), iter.Value()))
	}
	return entries
}

func (r *labelTable) GetByLabel(selector labels.Selector) Entries {
	entries := make(Entries, 0, r.table.Count())

	iter := r.table.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Value()) {
			entries = append(entries, NewEntry(iter.ID(), iter.Value()))
		}
	}
	return entries
}
