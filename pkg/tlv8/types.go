package tlv8

// Type identifies the kind of a TLV8 item.
type Type uint8

// Item types used by the pairing protocol.
const (
	TypeMethod        Type = 0x00
	TypeIdentifier    Type = 0x01
	TypeSalt          Type = 0x02
	TypePublicKey     Type = 0x03
	TypeProof         Type = 0x04
	TypeEncryptedData Type = 0x05
	TypeState         Type = 0x06
	TypeError         Type = 0x07
	TypeRetryDelay    Type = 0x08
	TypeCertificate   Type = 0x09
	TypeSignature     Type = 0x0A
	TypePermissions   Type = 0x0B
	TypeFragmentData  Type = 0x0C
	TypeFragmentLast  Type = 0x0D
	TypeSeparator     Type = 0xFF
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeMethod:
		return "Method"
	case TypeIdentifier:
		return "Identifier"
	case TypeSalt:
		return "Salt"
	case TypePublicKey:
		return "PublicKey"
	case TypeProof:
		return "Proof"
	case TypeEncryptedData:
		return "EncryptedData"
	case TypeState:
		return "State"
	case TypeError:
		return "Error"
	case TypeRetryDelay:
		return "RetryDelay"
	case TypeCertificate:
		return "Certificate"
	case TypeSignature:
		return "Signature"
	case TypePermissions:
		return "Permissions"
	case TypeFragmentData:
		return "FragmentData"
	case TypeFragmentLast:
		return "FragmentLast"
	case TypeSeparator:
		return "Separator"
	default:
		return "Unknown"
	}
}

// Method is the value of a Method item.
type Method uint8

const (
	// MethodPairSetup is pair setup without MFi authentication.
	MethodPairSetup Method = 0
	// MethodPairSetupWithAuth is pair setup with MFi authentication.
	MethodPairSetupWithAuth Method = 1
	MethodPairVerify        Method = 2
	MethodAddPairing        Method = 3
	MethodRemovePairing     Method = 4
	MethodListPairings      Method = 5
)

// State is the value of a State item: the message number of a pairing exchange.
type State uint8

const (
	StateM1 State = 1
	StateM2 State = 2
	StateM3 State = 3
	StateM4 State = 4
	StateM5 State = 5
	StateM6 State = 6
)

// String returns the message name.
func (s State) String() string {
	switch s {
	case StateM1:
		return "M1"
	case StateM2:
		return "M2"
	case StateM3:
		return "M3"
	case StateM4:
		return "M4"
	case StateM5:
		return "M5"
	case StateM6:
		return "M6"
	default:
		return "Unknown"
	}
}

// ErrorCode is the value of an Error item.
type ErrorCode uint8

const (
	// ErrorNone is never encoded; it marks the absence of an error.
	ErrorNone           ErrorCode = 0x00
	ErrorUnknown        ErrorCode = 0x01
	ErrorAuthentication ErrorCode = 0x02
	ErrorBackoff        ErrorCode = 0x03
	ErrorMaxPeers       ErrorCode = 0x04
	ErrorMaxTries       ErrorCode = 0x05
	ErrorUnavailable    ErrorCode = 0x06
	ErrorBusy           ErrorCode = 0x07
)

// String returns the error name.
func (e ErrorCode) String() string {
	switch e {
	case ErrorNone:
		return "None"
	case ErrorUnknown:
		return "Unknown"
	case ErrorAuthentication:
		return "Authentication"
	case ErrorBackoff:
		return "Backoff"
	case ErrorMaxPeers:
		return "MaxPeers"
	case ErrorMaxTries:
		return "MaxTries"
	case ErrorUnavailable:
		return "Unavailable"
	case ErrorBusy:
		return "Busy"
	default:
		return "Invalid"
	}
}

// Permission is the value of a Permissions item.
type Permission uint8

const (
	PermissionUser  Permission = 0x00
	PermissionAdmin Permission = 0x01
)

// String returns the permission name.
func (p Permission) String() string {
	switch p {
	case PermissionUser:
		return "User"
	case PermissionAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}
