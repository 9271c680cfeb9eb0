package iptable

import (
	"testing"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/tj/assert"
	"go4.org/netipx"
)

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		ipRange           string
		newSuccessEntries map[string]table.Route
		newFailedEntries  map[string]table.Route
		expectedEntries   int
	}{

		"Normal": {
			ipRange: "10.0.0.10-10.0.0.20",
			newSuccessEntries: map[string]table.Route{
				"10.0.0.10": {},
				"10.0.0.11": {},
			},
			newFailedEntries: map[string]table.Route{
				"10.0.0.21": {},
			},
			expectedEntries: 2,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {

			ipRange, err := netipx.ParseIPRange(tc.ipRange)
			assert.NoError(t, err)

			r, err := New(ipRange.From(), ipRange.To())
			assert.NoError(t, err)

			for addr, d := range tc.newSuccessEntries {
				err := r.Claim(addr, d)
				assert.NoError(t, err)

			}
			for addr, d := range tc.newFailedEntries {
				err := r.Claim(addr, d)
				assert.Error(t, err)
			}
			for addr := range tc.newSuccessEntries {
				if !r.Has(addr) {
					t.Errorf("%s expecting success claim entry: %s\n", name, addr)
				}
			}
			for addr := range tc.newFailedEntries {
				if r.Has(addr) {
					t.Errorf("%s no expecting failed claim entry: %s\n", name, addr)
				}
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, len(r.GetAll()))
			}

			a, err := r.FindFree()
			assert.NoError(t, err)
			assert.Equal(t, "10.0.0.12", a.String())
		})
	}
}

func TestClaimFreeAndRelease(t *testing.T) {
	ipRange, err := netipx.ParseIPRange("192.168.0.0-192.168.0.3")
	assert.NoError(t, err)

	r, err := New(ipRange.From(), ipRange.To())
	assert.NoError(t, err)

	a, err := r.ClaimFree(table.Route{})
	assert.NoError(t, err)
	assert.Equal(t, "192.168.0.0", a.String())

	assert.True(t, r.IsFree("192.168.0.1"))
	assert.False(t, r.IsFree("192.168.0.0"))

	assert.NoError(t, r.Release("192.168.0.0"))
	assert.True(t, r.IsFree("192.168.0.0"))

	assert.Error(t, r.Claim("192.168.1.1", table.Route{}))
}
