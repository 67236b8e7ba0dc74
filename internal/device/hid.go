package device

import (
	"errors"
	"fmt"

	"github.com/sstallion/go-hid"
)

var errStopEnumeration = errors.New("stop enumeration")

// HIDInventory enumerates HID devices through hidapi.
type HIDInventory struct{}

// NewHIDInventory returns the hidapi-backed inventory.
func NewHIDInventory() *HIDInventory {
	return &HIDInventory{}
}

// Each initialises hidapi (idempotent) and walks every attached HID device.
func (h *HIDInventory) Each(fn func(Info) bool) error {
	if err := hid.Init(); err != nil {
		return fmt.Errorf("init hidapi: %w", err)
	}

	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(d *hid.DeviceInfo) error {
		info := Info{
			Path:         d.Path,
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.MfrStr,
			Product:      d.ProductStr,
		}
		if !fn(info) {
			return errStopEnumeration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopEnumeration) {
		return fmt.Errorf("enumerate hid devices: %w", err)
	}
	return nil
}

// Close releases hidapi resources.
func (h *HIDInventory) Close() error {
	return hid.Exit()
}
