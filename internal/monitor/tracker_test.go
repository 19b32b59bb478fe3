package monitor

import "testing"

func TestFirstInStockObservationFires(t *testing.T) {
	tr := NewTracker()
	if !tr.Observe("https://shop.example.com/p/a", true) {
		t.Fatal("first in-stock observation of an unknown URL must fire")
	}
}

func TestFirstOutOfStockObservationDoesNotFire(t *testing.T) {
	tr := NewTracker()
	if tr.Observe("https://shop.example.com/p/a", false) {
		t.Fatal("out-of-stock observation must never fire")
	}
}

func TestEdgeTriggeredOnly(t *testing.T) {
	tr := NewTracker()
	url := "https://shop.example.com/p/a"

	tr.Observe(url, false)
	if !tr.Observe(url, true) {
		t.Fatal("out->in transition must fire")
	}
	if tr.Observe(url, true) {
		t.Fatal("in->in must not fire again")
	}
	if tr.Observe(url, false) {
		t.Fatal("in->out must not fire")
	}
	if !tr.Observe(url, true) {
		t.Fatal("a second out->in transition must fire again")
	}
}

func TestTargetsTrackedIndependently(t *testing.T) {
	tr := NewTracker()
	tr.Observe("https://shop.example.com/p/a", true)

	if !tr.Observe("https://shop.example.com/p/b", true) {
		t.Fatal("state for one URL must not affect another")
	}
}

func TestForgetResetsState(t *testing.T) {
	tr := NewTracker()
	url := "https://shop.example.com/p/a"
	tr.Observe(url, true)
	tr.Forget(url)
	if !tr.Observe(url, true) {
		t.Fatal("forgotten URL must fire on the next in-stock observation")
	}
}
