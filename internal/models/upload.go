package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceType is the target AR platform, which determines the output
// artifacts a conversion must produce.
type DeviceType string

const (
	DeviceIOS     DeviceType = "ios"
	DeviceAndroid DeviceType = "android"
	DeviceBoth    DeviceType = "both"
)

// Valid reports whether d is a known device profile.
func (d DeviceType) Valid() bool {
	switch d {
	case DeviceIOS, DeviceAndroid, DeviceBoth:
		return true
	}
	return false
}

// WantsUSDZ reports whether the profile requires a USDZ artifact reference.
func (d DeviceType) WantsUSDZ() bool {
	return d == DeviceIOS || d == DeviceBoth
}

// ConversionStatus is the client-visible state of an upload session.
// pending -> converting -> ready, or pending -> converting -> error.
type ConversionStatus string

const (
	StatusPending    ConversionStatus = "pending"
	StatusConverting ConversionStatus = "converting"
	StatusReady      ConversionStatus = "ready"
	StatusError      ConversionStatus = "error"
)

// TempUpload is one anonymous browser session's in-progress or completed
// conversion. Its backing files live under temp/<sessionId>; the record and
// the directory are always created and deleted together.
type TempUpload struct {
	ID               uuid.UUID        `json:"id"`
	SessionID        string           `json:"sessionId"`
	OriginalFileName string           `json:"originalFileName"`
	OriginalPath     string           `json:"originalPath"`
	GLBPath          *string          `json:"glbPath"`
	USDZPath         *string          `json:"usdzPath"`
	DeviceType       DeviceType       `json:"deviceType"`
	Status           ConversionStatus `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
}
