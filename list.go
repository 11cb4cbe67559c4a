package hc05

import (
	"path/filepath"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Port is an immutable snapshot of one enumerated serial port. USB metadata
// is populated when the OS exposes it; other fields stay empty.
type Port struct {
	Name         string // device name, e.g. ttyUSB0
	Path         string // full device path, e.g. /dev/ttyUSB0
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
}

// Label returns a one-line human-readable summary of the port.
func (p Port) Label() string {
	var b strings.Builder
	b.WriteString(p.Path)
	b.WriteString(" - ")
	b.WriteString(p.Description)
	if p.VendorID != "" && p.ProductID != "" {
		b.WriteString(" | VID:PID = ")
		b.WriteString(strings.ToUpper(p.VendorID))
		b.WriteString(":")
		b.WriteString(strings.ToUpper(p.ProductID))
	}
	if p.SerialNumber != "" {
		b.WriteString(" | Serial: ")
		b.WriteString(p.SerialNumber)
	}
	return b.String()
}

// ListPorts enumerates the serial ports currently known to the OS. Each call
// re-queries the system. Enumeration failure is never fatal: the returned
// slice is empty and the error is a diagnostic for the operator.
func ListPorts() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	ports := make([]Port, 0, len(details))
	for _, d := range details {
		name := filepath.Base(d.Name)
		p := Port{
			Name:        name,
			Path:        d.Name,
			Description: getPortDescription(name),
			IsUSB:       d.IsUSB,
		}
		if d.IsUSB {
			p.VendorID = d.VID
			p.ProductID = d.PID
			p.SerialNumber = d.SerialNumber
			if d.Product != "" {
				p.Description = d.Product
			}
		}
		ports = append(ports, p)
	}

	// Sort for consistent ordering across calls
	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })

	return ports, nil
}

// FindPort returns the enumerated port matching the given device path.
func FindPort(path string) (Port, bool) {
	ports, err := ListPorts()
	if err != nil {
		return Port{}, false
	}
	for _, p := range ports {
		if p.Path == path {
			return p, true
		}
	}
	return Port{}, false
}

// getPortDescription provides human-readable descriptions for port types that
// carry no USB product string
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "COM"):
		return "Serial Port"
	default:
		return "Serial Port"
	}
}
