// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"fmt"

	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

// TableId
//
// <iso13818-1.pdf> <table 2-31>
// <ETSI EN 300 468> <table 2>
const (
	TableIdPat           = 0x00 // program_association_section
	TableIdCat           = 0x01 // conditional_access_section
	TableIdPmt           = 0x02 // TS_program_map_section
	TableIdDsmccStream   = 0x3d // DSM-CC stream descriptors
	TableIdNitActual     = 0x40 // network_information_section - actual_network
	TableIdNitOther      = 0x41 // network_information_section - other_network
	TableIdSdtActual     = 0x42 // service_description_section - actual_transport_stream
	TableIdSdtOther      = 0x46 // service_description_section - other_transport_stream
	TableIdBat           = 0x4a // bouquet_association_section
	TableIdEitPfActual   = 0x4e // event_information_section - actual_transport_stream, present/following
	TableIdEitPfOther    = 0x4f // event_information_section - other_transport_stream, present/following
	TableIdEitSchedStart = 0x50 // event_information_section - actual_transport_stream, schedule
	TableIdEitSchedEnd   = 0x6f // 0x60 ~ 0x6f other_transport_stream, schedule
	TableIdTdt           = 0x70 // time_date_section
	TableIdTot           = 0x73 // time_offset_section
	TableIdForbidden     = 0xff
)

func IsEit(tableId uint8) bool {
	return tableId == TableIdEitPfActual || tableId == TableIdEitPfOther ||
		(tableId >= TableIdEitSchedStart && tableId <= TableIdEitSchedEnd)
}

func TableName(tableId uint8) string {
	switch {
	case tableId == TableIdPat:
		return "PAT"
	case tableId == TableIdCat:
		return "CAT"
	case tableId == TableIdPmt:
		return "PMT"
	case tableId == TableIdDsmccStream:
		return "DSM-CC stream descriptors"
	case tableId == TableIdNitActual:
		return "NIT actual"
	case tableId == TableIdNitOther:
		return "NIT other"
	case tableId == TableIdSdtActual:
		return "SDT actual"
	case tableId == TableIdSdtOther:
		return "SDT other"
	case tableId == TableIdBat:
		return "BAT"
	case tableId == TableIdEitPfActual:
		return "EIT p/f actual"
	case tableId == TableIdEitPfOther:
		return "EIT p/f other"
	case tableId >= 0x50 && tableId <= 0x5f:
		return "EIT schedule actual"
	case tableId >= 0x60 && tableId <= 0x6f:
		return "EIT schedule other"
	case tableId == TableIdTdt:
		return "TDT"
	case tableId == TableIdTot:
		return "TOT"
	}
	return fmt.Sprintf("table 0x%02x", tableId)
}

// Key 同一个Key的section组成一个table实例
//
// actual和other的table_id不同，所以天然是不同的Key
type Key struct {
	TableId uint8

	// Id table_id_extension，各个表含义不同:
	// PAT transport_stream_id, PMT program_number, NIT network_id, SDT transport_stream_id,
	// BAT bouquet_id, EIT service_id, DSM-CC table_id_extension, CAT固定为0
	Id uint16

	// SDT和EIT中在section body里的附加标识，其他表为0
	TransportStreamId uint16
	OriginalNetworkId uint16
}

func (k Key) String() string {
	if k.TransportStreamId == 0 && k.OriginalNetworkId == 0 {
		return fmt.Sprintf("%s(0x%02x) id=%d", TableName(k.TableId), k.TableId, k.Id)
	}
	return fmt.Sprintf("%s(0x%02x) id=%d, ts=%d, onid=%d", TableName(k.TableId), k.TableId, k.Id, k.TransportStreamId, k.OriginalNetworkId)
}
