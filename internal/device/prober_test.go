package device

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeInventory is a static inventory that counts visits.
type fakeInventory struct {
	mu      sync.Mutex
	devices []Info
	err     error
	visited int
}

func (f *fakeInventory) Each(fn func(Info) bool) error {
	if f.err != nil {
		return f.err
	}
	for _, d := range f.devices {
		f.mu.Lock()
		f.visited++
		f.mu.Unlock()
		if !fn(d) {
			return nil
		}
	}
	return nil
}

func mustSet(t *testing.T, tokens ...string) MonitoredSet {
	t.Helper()
	set, errs := ParseSet(tokens)
	if len(errs) > 0 {
		t.Fatalf("ParseSet(%v) errors: %v", tokens, errs)
	}
	return set
}

func TestProber_Probe_Match(t *testing.T) {
	inv := &fakeInventory{devices: []Info{
		{VendorID: 0x1234, ProductID: 0x0001},
		{VendorID: 0x046D, ProductID: 0x085C},
	}}
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C"), nil)

	if !p.Probe() {
		t.Error("Probe() = false, want true")
	}
}

func TestProber_Probe_NoMatch(t *testing.T) {
	inv := &fakeInventory{devices: []Info{
		{VendorID: 0x1234, ProductID: 0x0001},
	}}
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C"), nil)

	if p.Probe() {
		t.Error("Probe() = true, want false")
	}
}

func TestProber_Probe_AnyOfSet(t *testing.T) {
	inv := &fakeInventory{devices: []Info{
		{VendorID: 0x0B05, ProductID: 0x1866},
	}}
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C", "VID_0B05&PID_1866"), nil)

	if !p.Probe() {
		t.Error("Probe() = false, want true when second identifier is attached")
	}
}

func TestProber_Probe_ShortCircuits(t *testing.T) {
	inv := &fakeInventory{devices: []Info{
		{VendorID: 0x046D, ProductID: 0x085C},
		{VendorID: 0x1234, ProductID: 0x0001},
		{VendorID: 0x1234, ProductID: 0x0002},
	}}
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C"), nil)

	if !p.Probe() {
		t.Fatal("Probe() = false, want true")
	}
	if inv.visited != 1 {
		t.Errorf("visited %d devices, want 1", inv.visited)
	}
}

func TestProber_Probe_FailsClosed(t *testing.T) {
	backendErr := errors.New("hidapi unavailable")
	inv := &fakeInventory{
		devices: []Info{{VendorID: 0x046D, ProductID: 0x085C}},
		err:     backendErr,
	}

	var reported error
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C"), func(err error) {
		reported = err
	})

	if p.Probe() {
		t.Error("Probe() = true, want false when inventory fails")
	}
	if !errors.Is(reported, backendErr) {
		t.Errorf("reported error = %v, want %v", reported, backendErr)
	}
}

func TestProber_Probe_EmptySet(t *testing.T) {
	inv := &fakeInventory{devices: []Info{{VendorID: 0x046D, ProductID: 0x085C}}}
	p := NewProber(inv, nil, nil)

	if p.Probe() {
		t.Error("Probe() = true, want false for empty monitored set")
	}
}

func TestProber_Probe_Concurrent(t *testing.T) {
	inv := &fakeInventory{devices: []Info{{VendorID: 0x046D, ProductID: 0x085C}}}
	p := NewProber(inv, mustSet(t, "VID_046D&PID_085C"), nil)

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Probe()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if !r {
			t.Errorf("probe %d = false, want true", i)
		}
	}
}

func TestList_Sorted(t *testing.T) {
	inv := &fakeInventory{devices: []Info{
		{VendorID: 0x2000, ProductID: 0x0001, Path: "b"},
		{VendorID: 0x1000, ProductID: 0x0002, Path: "a"},
		{VendorID: 0x1000, ProductID: 0x0001, Path: "c"},
	}}

	infos, err := List(inv)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(infos))
	}

	want := []Identifier{{0x1000, 0x0001}, {0x1000, 0x0002}, {0x2000, 0x0001}}
	for i, id := range want {
		if infos[i].Identifier() != id {
			t.Errorf("infos[%d] = %v, want %v", i, infos[i].Identifier(), id)
		}
	}
}

func TestFingerprint_ChangesWithInventory(t *testing.T) {
	inv := &fakeInventory{devices: []Info{{VendorID: 0x046D, ProductID: 0x085C, Path: "p1"}}}

	before, err := Fingerprint(inv)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if !strings.Contains(before, "VID_046D&PID_085C") {
		t.Errorf("fingerprint %q does not mention the device", before)
	}

	same, _ := Fingerprint(inv)
	if same != before {
		t.Errorf("fingerprint changed without inventory change: %q vs %q", before, same)
	}

	inv.devices = nil
	after, _ := Fingerprint(inv)
	if after == before {
		t.Error("fingerprint did not change after device removal")
	}
}

func TestInventoryFunc(t *testing.T) {
	inv := InventoryFunc(func(fn func(Info) bool) error {
		fn(Info{VendorID: 1, ProductID: 2})
		return nil
	})
	p := NewProber(inv, MonitoredSet{{VendorID: 1, ProductID: 2}}, nil)
	if !p.Probe() {
		t.Error("Probe() = false, want true")
	}
}
