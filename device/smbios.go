// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package device

import (
	"io"
	"strings"

	"github.com/digitalocean/go-smbios/smbios"

	"github.com/blsforme/provision-disk/log"
)

// smbiosType1System and smbiosType2Baseboard are the DMTF SMBIOS structure
// type numbers this enrichment reads. See DSP0134 7.2 (System Information)
// and 7.3 (Baseboard Information).
const (
	smbiosType1System    = 1
	smbiosType2Baseboard = 2
)

// EnrichFromSMBIOS fills in Vendor/Model on disks whose sysfs attributes came
// back empty, using the host's SMBIOS baseboard/system strings as a
// best-effort fallback. It never errors: an unreadable or absent SMBIOS
// stream (common in containers and most CI) silently leaves the affected
// disks exactly as Discover found them. This is opt-in and is never called
// from the default Discover path.
func EnrichFromSMBIOS(devices []BlockDevice) {
	vendor, model, ok := readSMBIOSVendorModel()
	if !ok {
		return
	}

	for _, bd := range devices {
		bdisk := bd.AsBasicDisk()
		if bdisk == nil {
			continue
		}
		if bdisk.Vendor == "" {
			bdisk.Vendor = vendor
		}
		if bdisk.Model == "" {
			bdisk.Model = model
		}
	}
}

func readSMBIOSVendorModel() (vendor string, model string, ok bool) {
	rc, _, err := smbios.Stream()
	if err != nil {
		log.Debug("smbios: stream unavailable: %v", err)
		return "", "", false
	}
	defer func() { _ = rc.Close() }()

	vendor, model, ok = decodeSMBIOSVendorModel(rc)
	return vendor, model, ok
}

func decodeSMBIOSVendorModel(r io.Reader) (vendor string, model string, ok bool) {
	d := smbios.NewDecoder(r)
	structures, err := d.Decode()
	if err != nil {
		log.Debug("smbios: decode failed: %v", err)
		return "", "", false
	}

	for _, s := range structures {
		switch s.Header.Type {
		case smbiosType2Baseboard:
			if len(s.Strings) >= 2 {
				vendor = strings.TrimSpace(s.Strings[0])
				model = strings.TrimSpace(s.Strings[1])
			}
		case smbiosType1System:
			if vendor == "" && len(s.Strings) >= 2 {
				vendor = strings.TrimSpace(s.Strings[0])
				model = strings.TrimSpace(s.Strings[1])
			}
		}
	}

	return vendor, model, vendor != "" || model != ""
}
