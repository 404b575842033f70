package tsnsim

import (
	"testing"
)

func TestNewPriorityMapInvalidCount(t *testing.T) {
	for _, count := range []int{0, 9, -1} {
		if _, err := NewPriorityMap(count); err != ErrInvalidTrafficClassCount {
			t.Fatalf("count=%d: got %v, want ErrInvalidTrafficClassCount", count, err)
		}
	}
}

// TestPriorityMapClassForAllTrafficClassCounts checks the full 802.1Q
// Table 8-4 row for every valid AvailableTrafficClasses count (1..8)
// against the ground-truth PriorityMap.map in
// _examples/original_source/simulation/switch.py.
func TestPriorityMapClassForAllTrafficClassCounts(t *testing.T) {
	rows := [8][8]int{
		{0, 0, 0, 0, 0, 0, 0, 0}, // 1 traffic class
		{0, 0, 0, 0, 1, 1, 1, 1}, // 2 traffic classes
		{0, 0, 0, 0, 1, 1, 2, 2}, // 3 traffic classes
		{0, 0, 1, 1, 2, 2, 3, 3}, // 4 traffic classes
		{0, 0, 1, 1, 2, 2, 3, 4}, // 5 traffic classes
		{1, 0, 2, 2, 3, 3, 4, 5}, // 6 traffic classes
		{1, 0, 2, 3, 4, 4, 5, 6}, // 7 traffic classes
		{1, 0, 2, 3, 4, 5, 6, 7}, // 8 traffic classes
	}
	for count := 1; count <= 8; count++ {
		pm, err := NewPriorityMap(count)
		if err != nil {
			t.Fatalf("count=%d: %v", count, err)
		}
		for priority, want := range rows[count-1] {
			if got := pm.ClassFor(priority); got != TrafficClass(want) {
				t.Errorf("count=%d: ClassFor(%d) = %d, want %d", count, priority, got, want)
			}
		}
	}
}

func TestPriorityMapClassForOutOfRange(t *testing.T) {
	pm, err := NewPriorityMap(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, priority := range []int{-1, 8, 100} {
		if got := pm.ClassFor(priority); got != 0 {
			t.Errorf("ClassFor(%d) = %d, want 0", priority, got)
		}
	}
}

func TestPriorityMapOverride(t *testing.T) {
	pm, err := NewPriorityMap(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := pm.Override(2, TrafficClass(3)); err != nil {
		t.Fatal(err)
	}
	if got := pm.ClassFor(2); got != 3 {
		t.Fatalf("ClassFor(2) = %d, want 3", got)
	}
}

func TestPriorityMapOverrideInvalid(t *testing.T) {
	pm, err := NewPriorityMap(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := pm.Override(8, TrafficClass(0)); err != ErrInvalidPriority {
		t.Fatalf("got %v, want ErrInvalidPriority", err)
	}
	if err := pm.Override(0, TrafficClass(4)); err != ErrInvalidTrafficClassCount {
		t.Fatalf("got %v, want ErrInvalidTrafficClassCount", err)
	}
}
