package discovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TXT record keys of the _hap._tcp service.
const (
	// TXTKeyConfigNumber changes whenever the accessory database changes.
	TXTKeyConfigNumber = "c#"

	// TXTKeyFeatureFlags is the pairing feature flags.
	TXTKeyFeatureFlags = "ff"

	// TXTKeyDeviceID is the accessory pairing identifier.
	TXTKeyDeviceID = "id"

	// TXTKeyModel is the model name.
	TXTKeyModel = "md"

	// TXTKeyProtocolVersion is the HAP protocol version.
	TXTKeyProtocolVersion = "pv"

	// TXTKeyStateNumber is the current state number.
	TXTKeyStateNumber = "s#"

	// TXTKeyStatusFlags is the status flags bitmap.
	TXTKeyStatusFlags = "sf"

	// TXTKeyCategory is the accessory category identifier.
	TXTKeyCategory = "ci"
)

var deviceIDPattern = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

// AccessoryTXT holds the TXT records for _hap._tcp.
type AccessoryTXT struct {
	// ConfigNumber is the configuration number, 1-65535.
	ConfigNumber uint32

	// FeatureFlags is 0 for accessories without MFi authentication.
	FeatureFlags uint8

	// DeviceID is the pairing identifier (XX:XX:XX:XX:XX:XX).
	DeviceID string

	// Model is the model name.
	Model string

	// ProtocolVersion defaults to ProtocolVersion when empty.
	ProtocolVersion string

	// StateNumber is always 1 for IP accessories.
	StateNumber uint32

	// StatusFlags is the status bitmap.
	StatusFlags StatusFlag

	// Category is the accessory category.
	Category Category
}

// Validate checks the TXT values.
func (t *AccessoryTXT) Validate() error {
	if t.ConfigNumber < 1 || t.ConfigNumber > 65535 {
		return ErrInvalidConfigNumber
	}
	if !deviceIDPattern.MatchString(t.DeviceID) {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceID, t.DeviceID)
	}
	if t.Model == "" {
		return ErrInvalidModel
	}
	if t.Category == 0 {
		return ErrInvalidCategory
	}
	return nil
}

// Paired reports whether the status flags mark the accessory as paired.
func (t AccessoryTXT) Paired() bool {
	return t.StatusFlags&StatusNotPaired == 0
}

// SetPaired updates the not-paired status bit.
func (t *AccessoryTXT) SetPaired(paired bool) {
	if paired {
		t.StatusFlags &^= StatusNotPaired
	} else {
		t.StatusFlags |= StatusNotPaired
	}
}

// Encode returns the TXT records as key=value strings.
func (t *AccessoryTXT) Encode() []string {
	pv := t.ProtocolVersion
	if pv == "" {
		pv = ProtocolVersion
	}
	s := t.StateNumber
	if s == 0 {
		s = 1
	}
	return []string{
		TXTKeyConfigNumber + "=" + strconv.FormatUint(uint64(t.ConfigNumber), 10),
		TXTKeyFeatureFlags + "=" + strconv.FormatUint(uint64(t.FeatureFlags), 10),
		TXTKeyDeviceID + "=" + t.DeviceID,
		TXTKeyModel + "=" + t.Model,
		TXTKeyProtocolVersion + "=" + pv,
		TXTKeyStateNumber + "=" + strconv.FormatUint(uint64(s), 10),
		TXTKeyStatusFlags + "=" + strconv.FormatUint(uint64(t.StatusFlags), 10),
		TXTKeyCategory + "=" + strconv.FormatUint(uint64(t.Category), 10),
	}
}

// ParseAccessoryTXT decodes TXT records produced by Encode.
// Unknown keys are ignored.
func ParseAccessoryTXT(records []string) (AccessoryTXT, error) {
	var t AccessoryTXT
	for _, rec := range records {
		key, value, ok := strings.Cut(rec, "=")
		if !ok {
			return t, fmt.Errorf("%w: %q", ErrInvalidTXTRecord, rec)
		}

		var err error
		switch key {
		case TXTKeyConfigNumber:
			t.ConfigNumber, err = parseUint32(value)
		case TXTKeyFeatureFlags:
			var v uint64
			v, err = strconv.ParseUint(value, 10, 8)
			t.FeatureFlags = uint8(v)
		case TXTKeyDeviceID:
			t.DeviceID = value
		case TXTKeyModel:
			t.Model = value
		case TXTKeyProtocolVersion:
			t.ProtocolVersion = value
		case TXTKeyStateNumber:
			t.StateNumber, err = parseUint32(value)
		case TXTKeyStatusFlags:
			var v uint64
			v, err = strconv.ParseUint(value, 10, 8)
			t.StatusFlags = StatusFlag(v)
		case TXTKeyCategory:
			var v uint64
			v, err = strconv.ParseUint(value, 10, 16)
			t.Category = Category(v)
		}
		if err != nil {
			return t, fmt.Errorf("%w: %s: %v", ErrInvalidTXTRecord, key, err)
		}
	}
	return t, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}
