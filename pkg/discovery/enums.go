// Package discovery advertises the accessory over DNS-SD (mDNS).
//
// An unpaired accessory advertises _hap._tcp with status flag sf=1 so that
// controllers offer it for pairing. Once the first controller is paired the
// TXT record is updated in place to sf=0.
package discovery

import "strconv"

// DNS-SD service constants.
const (
	// ServiceHAP is the DNS-SD service type for HAP over IP accessories.
	ServiceHAP = "_hap._tcp"

	// DefaultDomain is the default mDNS domain.
	DefaultDomain = "local."

	// ProtocolVersion is the advertised HAP protocol version.
	ProtocolVersion = "1.1"
)

// StatusFlag is a bit of the sf TXT key.
type StatusFlag uint8

const (
	// StatusNotPaired is set while the accessory has no paired controller.
	StatusNotPaired StatusFlag = 0x01

	// StatusNotConfiguredForWiFi is set when Wi-Fi is not configured.
	StatusNotConfiguredForWiFi StatusFlag = 0x02

	// StatusProblemDetected is set when the accessory detected a problem.
	StatusProblemDetected StatusFlag = 0x04
)

// String returns the flag names joined by "|".
func (f StatusFlag) String() string {
	if f == 0 {
		return "Paired"
	}
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if f&StatusNotPaired != 0 {
		add("NotPaired")
	}
	if f&StatusNotConfiguredForWiFi != 0 {
		add("NotConfiguredForWiFi")
	}
	if f&StatusProblemDetected != 0 {
		add("ProblemDetected")
	}
	if rest := f &^ (StatusNotPaired | StatusNotConfiguredForWiFi | StatusProblemDetected); rest != 0 {
		add("0x" + strconv.FormatUint(uint64(rest), 16))
	}
	return s
}

// Category is the accessory category identifier (ci TXT key).
type Category uint16

// Category constants.
const (
	CategoryOther              Category = 1
	CategoryBridge             Category = 2
	CategoryFan                Category = 3
	CategoryGarageDoorOpener   Category = 4
	CategoryLightbulb          Category = 5
	CategoryDoorLock           Category = 6
	CategoryOutlet             Category = 7
	CategorySwitch             Category = 8
	CategoryThermostat         Category = 9
	CategorySensor             Category = 10
	CategorySecuritySystem     Category = 11
	CategoryDoor               Category = 12
	CategoryWindow             Category = 13
	CategoryWindowCovering     Category = 14
	CategoryProgrammableSwitch Category = 15
	CategoryIPCamera           Category = 17
	CategoryAirPurifier        Category = 19
	CategoryHeater             Category = 20
	CategoryAirConditioner     Category = 21
	CategoryHumidifier         Category = 22
	CategoryDehumidifier       Category = 23
	CategorySprinkler          Category = 28
	CategoryFaucet             Category = 29
	CategoryShowerHead         Category = 30
	CategoryTelevision         Category = 31
)

// String returns a human-readable string for the category.
func (c Category) String() string {
	switch c {
	case CategoryOther:
		return "Other"
	case CategoryBridge:
		return "Bridge"
	case CategoryFan:
		return "Fan"
	case CategoryGarageDoorOpener:
		return "GarageDoorOpener"
	case CategoryLightbulb:
		return "Lightbulb"
	case CategoryDoorLock:
		return "DoorLock"
	case CategoryOutlet:
		return "Outlet"
	case CategorySwitch:
		return "Switch"
	case CategoryThermostat:
		return "Thermostat"
	case CategorySensor:
		return "Sensor"
	case CategorySecuritySystem:
		return "SecuritySystem"
	case CategoryDoor:
		return "Door"
	case CategoryWindow:
		return "Window"
	case CategoryWindowCovering:
		return "WindowCovering"
	case CategoryProgrammableSwitch:
		return "ProgrammableSwitch"
	case CategoryIPCamera:
		return "IPCamera"
	case CategoryAirPurifier:
		return "AirPurifier"
	case CategoryHeater:
		return "Heater"
	case CategoryAirConditioner:
		return "AirConditioner"
	case CategoryHumidifier:
		return "Humidifier"
	case CategoryDehumidifier:
		return "Dehumidifier"
	case CategorySprinkler:
		return "Sprinkler"
	case CategoryFaucet:
		return "Faucet"
	case CategoryShowerHead:
		return "ShowerHead"
	case CategoryTelevision:
		return "Television"
	default:
		return "Unknown(" + strconv.Itoa(int(c)) + ")"
	}
}
