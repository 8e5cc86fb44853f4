// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

// ISO/IEC 13818-1 2.6 Program and program element descriptors
const (
	TagRegistration         = 0x05
	TagDataStreamAlignment  = 0x06
	TagCA                   = 0x09
	TagISO639Language       = 0x0a
	TagMaximumBitrate       = 0x0e
	TagPrivateDataIndicator = 0x0f
	TagAVCVideo             = 0x28
)

// ISO/IEC 13818-6 DSM-CC stream descriptors, only in ContextDSMCC
const (
	TagNPTReference = 0x17
	TagNPTEndpoint  = 0x18
	TagStreamMode   = 0x19
	TagStreamEvent  = 0x1a
)

// ETSI EN 300 468 6.1 Descriptor identification and location
const (
	TagNetworkName          = 0x40
	TagServiceList          = 0x41
	TagSatelliteDelivery    = 0x43
	TagCableDelivery        = 0x44
	TagVBIData              = 0x45
	TagVBITeletext          = 0x46
	TagBouquetName          = 0x47
	TagService              = 0x48
	TagShortEvent           = 0x4d
	TagExtendedEvent        = 0x4e
	TagComponent            = 0x50
	TagStreamIdentifier     = 0x52
	TagCAIdentifier         = 0x53
	TagContent              = 0x54
	TagParentalRating       = 0x55
	TagTeletext             = 0x56
	TagLocalTimeOffset      = 0x58
	TagSubtitling           = 0x59
	TagTerrestrialDelivery  = 0x5a
	TagPrivateDataSpecifier = 0x5f
	TagDataBroadcastId      = 0x66
	TagAC3                  = 0x6a
	TagEnhancedAC3          = 0x7a
	TagExtension            = 0x7f
)

// 私有的，EICTA/NorDig，只在NIT中出现
const (
	TagLogicalChannel            = 0x83
	TagHDSimulcastLogicalChannel = 0x88
)

// ETSI EN 300 468 6.4 Extended descriptor identification and location
const (
	ExtensionTagT2Delivery = 0x04
)
