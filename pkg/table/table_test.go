package table

import (
	"fmt"
	"testing"

	"github.com/henderiw/addrtable/pkg/addrrange"
	"github.com/tj/assert"
	"k8s.io/apimachinery/pkg/labels"
)

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		window            addrrange.Range
		newSuccessEntries map[uint64]labels.Set
		newFailedEntries  map[uint64]labels.Set
		expectedEntries   int
	}{

		"Normal": {
			window: addrrange.FromTo(0, 4095),
			newSuccessEntries: map[uint64]labels.Set{
				10: map[string]string{"a": "b"},
				11: map[string]string{"c": "d"},
			},
			newFailedEntries: map[uint64]labels.Set{
				20000000000: map[string]string{},
			},
			expectedEntries: 2,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			vt, err := New(tc.window, nil, nil)
			assert.NoError(t, err)

			for id, d := range tc.newSuccessEntries {
				id := id
				d := d
				err := vt.Claim(id, d)
				assert.NoError(t, err)
			}
			for id, d := range tc.newFailedEntries {
				id := id
				d := d
				err := vt.Claim(id, d)
				assert.Error(t, err)
			}
			// check table
			for id := range tc.newSuccessEntries {
				if _, err := vt.Get(id); err != nil {
					t.Errorf("%s expecting success claim entry: %d\n", name, id)
				}
			}
			for id := range tc.newFailedEntries {
				if _, err := vt.Get(id); err == nil {
					t.Errorf("%s expecting failed claim entry: %d\n", name, id)
				}
			}

			if len(vt.GetAll()) != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, len(vt.GetAll()))
			}
		})
	}
}

func TestClaimWithValidation(t *testing.T) {
	initEntries := map[uint64]labels.Set{
		0:    map[string]string{"type": "untagged", "status": "reserved"},
		1:    map[string]string{"type": "untagged", "status": "reserved"},
		4095: map[string]string{"type": "untagged", "status": "reserved"},
	}
	vt, err := New(addrrange.FromTo(0, 4095), initEntries,
		func(id uint64) error {
			switch id {
			case 0, 1, 4095:
				return fmt.Errorf("id %d is reserved, cannot be claimed", id)
			}
			return nil
		},
	)
	assert.NoError(t, err)
	assert.Equal(t, 3, vt.Count())

	assert.Error(t, vt.Claim(0, map[string]string{}))
	assert.NoError(t, vt.Claim(100, map[string]string{}))

	id, err := vt.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestClaimFreeAndRange(t *testing.T) {
	vt, err := New(addrrange.FromTo(100, 199), nil, nil)
	assert.NoError(t, err)

	e, err := vt.ClaimFree(map[string]string{"a": "b"})
	assert.NoError(t, err)
	assert.Equal(t, uint64(100), e.ID())

	err = vt.ClaimRange(150, 10, map[string]string{"pool": "x"})
	assert.NoError(t, err)
	assert.Equal(t, 11, vt.Count())

	expected := []addrrange.Range{addrrange.FromTo(101, 149), addrrange.FromTo(160, 199)}
	assert.Equal(t, expected, vt.FreeRanges())

	assert.NoError(t, vt.Release(100))
	assert.True(t, vt.IsFree(100))
}

func TestGetByLabel(t *testing.T) {
	vt, err := New(addrrange.FromTo(0, 999), nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, vt.Claim(10, map[string]string{"tenant": "a"}))
	assert.NoError(t, vt.Claim(11, map[string]string{"tenant": "b"}))
	assert.NoError(t, vt.Claim(12, map[string]string{"tenant": "a"}))

	entries := vt.GetByLabel(labels.SelectorFromSet(map[string]string{"tenant": "a"}))
	assert.Equal(t, 2, len(entries))
	for _, e := range entries {
		assert.Equal(t, "a", e.Labels()["tenant"])
	}
}
