//go:build linux

package event

import "testing"

type fakeUdevDevice struct {
	action    string
	subsystem string
}

func (d fakeUdevDevice) Action() string    { return d.action }
func (d fakeUdevDevice) Subsystem() string { return d.subsystem }

func TestUdevCode(t *testing.T) {
	tests := []struct {
		action string
		want   Code
	}{
		{"add", DeviceArrival},
		{"remove", DeviceRemoveComplete},
		{"bind", DevNodesChanged},
		{"unbind", DevNodesChanged},
		{"change", DevNodesChanged},
		{"online", CustomEvent},
		{"", CustomEvent},
	}
	for _, tc := range tests {
		got := udevCode(fakeUdevDevice{action: tc.action, subsystem: "usb"})
		if got != tc.want {
			t.Errorf("udevCode(%q) = %v, want %v", tc.action, got, tc.want)
		}
	}
}
