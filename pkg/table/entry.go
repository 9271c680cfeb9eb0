package table

import (
	"fmt"

	"k8s.io/apimachinery/pkg/labels"
)

type Entry interface {
	ID() uint64
	Labels() labels.Set
	String() string
	Equal(e2 Entry) bool
}

type entry struct {
	id     uint64
	labels labels.Set
}

type Entries []Entry

func (r entry) ID() uint64         { return r.id }
func (r entry) Labels() labels.Set { return r.labels }
func (r entry) String() string     { return fmt.Sprintf("id: %d, labels: %s", r.id, r.labels.String()) }
func (r entry) Equal(e2 Entry) bool {
	return r.id == e2.ID() && r.labels.String() == e2.Labels().String()
}

func NewEntry(id uint64, labels labels.Set) Entry {
	return entry{
		id:     id,
		labels: labels,
	}
}
