package sysprobe

import "runtime"

// HardwareInfo describes the machine itself rather than the software
// running on it.
type HardwareInfo struct {
	MachineType string
	Processor   string
	BIOSVersion string
	BootMode    string
}

// Hardware collects architecture, processor, BIOS and boot mode
// information. Firmware fields read "Unknown" where the DMI tree is
// absent or unreadable.
func (h *Host) Hardware() *HardwareInfo {
	machine := machineType(runtime.GOARCH)

	processor := h.cpuModel()
	if processor == "Unknown CPU" {
		processor = machine
	}

	bios := h.readTrimmed("/sys/class/dmi/id/bios_version")
	if bios == "" {
		bios = "Unknown"
	}

	bootMode := "Unknown"
	if runtime.GOOS == "linux" {
		if h.pathExists("/sys/firmware/efi") {
			bootMode = "UEFI"
		} else {
			bootMode = "Legacy BIOS"
		}
	}

	return &HardwareInfo{
		MachineType: machine,
		Processor:   processor,
		BIOSVersion: bios,
		BootMode:    bootMode,
	}
}

// machineType maps a GOARCH value to the uname -m convention.
func machineType(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7l"
	}
	return goarch
}
