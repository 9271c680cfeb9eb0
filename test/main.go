package main

import (
	"fmt"

	niptable "github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/addrtable/pkg/addrrange"
	"github.com/henderiw/addrtable/pkg/iptable"
	"github.com/henderiw/addrtable/pkg/table"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

func main() {
	s := addrrange.NewSet()
	s.Insert(addrrange.FromTo(0, 9))
	s.Insert(addrrange.FromTo(20, 29))
	fmt.Println("set", s)
	s.Insert(addrrange.FromTo(10, 19))
	fmt.Println("set after bridge", s)

	vt, err := table.New(addrrange.FromTo(0, 4095), nil, nil)
	if err != nil {
		panic(err)
	}
	if err := vt.Claim(100, map[string]string{"a": "b"}); err != nil {
		panic(err)
	}
	if err := vt.ClaimRange(1000, 10, map[string]string{"range": "test"}); err != nil {
		panic(err)
	}
	e, err := vt.ClaimFree(map[string]string{"a": "b"})
	if err != nil {
		panic(err)
	}
	fmt.Println("claimed free entry", e.String())

	ls, err := GetLabelSelector(map[string]string{"a": "b"})
	if err != nil {
		panic(err)
	}
	for _, e := range vt.GetByLabel(ls) {
		fmt.Println("entries by label", e.String())
	}
	for _, rng := range vt.FreeRanges() {
		fmt.Println("free range", rng)
	}

	ipRange, err := netipx.ParseIPRange("10.0.0.10-10.0.0.20")
	if err != nil {
		panic(err)
	}
	ipt, err := iptable.New(ipRange.From(), ipRange.To())
	if err != nil {
		panic(err)
	}
	if err := ipt.Claim("10.0.0.10", niptable.Route{}); err != nil {
		panic(err)
	}
	a, err := ipt.FindFree()
	if err != nil {
		panic(err)
	}
	fmt.Println("free ip", a.String())
}

func GetLabelSelector(l map[string]string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for k, v := range l {
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}
