package hc05

import (
	"strings"
	"testing"
)

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"COM3", "Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := getPortDescription(test.name)
		if result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestPortLabel(t *testing.T) {
	p := Port{
		Name:         "ttyUSB0",
		Path:         "/dev/ttyUSB0",
		Description:  "CP2102 USB to UART Bridge",
		IsUSB:        true,
		VendorID:     "10c4",
		ProductID:    "ea60",
		SerialNumber: "0001",
	}

	label := p.Label()
	for _, want := range []string{"/dev/ttyUSB0", "CP2102 USB to UART Bridge", "10C4:EA60", "Serial: 0001"} {
		if !strings.Contains(label, want) {
			t.Errorf("Label %q missing %q", label, want)
		}
	}
}

func TestPortLabelWithoutUSBMetadata(t *testing.T) {
	p := Port{
		Name:        "ttyS0",
		Path:        "/dev/ttyS0",
		Description: "Standard Serial Port",
	}

	label := p.Label()
	if strings.Contains(label, "VID:PID") || strings.Contains(label, "Serial:") {
		t.Errorf("Label %q shows USB metadata for a non-USB port", label)
	}
}

func TestListPortsIsRestartable(t *testing.T) {
	// Two consecutive calls must both hit the OS and agree on ordering.
	first, err := ListPorts()
	if err != nil {
		t.Skipf("enumeration unavailable in this environment: %v", err)
	}
	second, err := ListPorts()
	if err != nil {
		t.Fatalf("second enumeration failed after first succeeded: %v", err)
	}

	if len(first) != len(second) {
		t.Skip("port set changed between calls")
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Errorf("ordering not stable: %s vs %s", first[i].Path, second[i].Path)
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1].Path > first[i].Path {
			t.Errorf("ports are not sorted: %s > %s", first[i-1].Path, first[i].Path)
		}
	}
}
