package device

import (
	"sort"
)

// Info describes one entry in the host device inventory.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
}

// Identifier returns the vendor/product pair of the entry.
func (i Info) Identifier() Identifier {
	return Identifier{VendorID: i.VendorID, ProductID: i.ProductID}
}

// Inventory enumerates devices currently attached to the host.
type Inventory interface {
	// Each calls fn for every device until fn returns false.
	// An error means the inventory could not be obtained at all.
	Each(fn func(Info) bool) error
}

// InventoryFunc adapts a plain function to Inventory.
type InventoryFunc func(fn func(Info) bool) error

func (f InventoryFunc) Each(fn func(Info) bool) error {
	return f(fn)
}

// Prober answers whether any monitored device is currently present.
type Prober struct {
	inv     Inventory
	set     MonitoredSet
	onError func(error)
}

// NewProber creates a prober over the given inventory.
// onError receives backend failures; it may be nil.
func NewProber(inv Inventory, set MonitoredSet, onError func(error)) *Prober {
	if onError == nil {
		onError = func(error) {}
	}
	return &Prober{
		inv:     inv,
		set:     set,
		onError: onError,
	}
}

// Probe returns true on the first inventory entry matching the monitored set.
// It fails closed: if the inventory is unavailable the result is false.
func (p *Prober) Probe() bool {
	if len(p.set) == 0 {
		return false
	}

	found := false
	err := p.inv.Each(func(info Info) bool {
		if p.set.Contains(info) {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		p.onError(err)
		return false
	}
	return found
}

// List returns every inventory entry, sorted by vendor, product and path.
func List(inv Inventory) ([]Info, error) {
	var infos []Info
	err := inv.Each(func(info Info) bool {
		infos = append(infos, info)
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].VendorID != infos[j].VendorID {
			return infos[i].VendorID < infos[j].VendorID
		}
		if infos[i].ProductID != infos[j].ProductID {
			return infos[i].ProductID < infos[j].ProductID
		}
		return infos[i].Path < infos[j].Path
	})
	return infos, nil
}

// Fingerprint summarises the inventory as a sorted list of identifiers.
// Two equal fingerprints mean no device was added or removed in between.
func Fingerprint(inv Inventory) (string, error) {
	infos, err := List(inv)
	if err != nil {
		return "", err
	}
	var b []byte
	for _, info := range infos {
		b = append(b, info.Identifier().String()...)
		b = append(b, '@')
		b = append(b, info.Path...)
		b = append(b, ';')
	}
	return string(b), nil
}
