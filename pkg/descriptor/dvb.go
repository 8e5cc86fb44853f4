// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"fmt"
	"time"

	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// <ETSI EN 300 468> <6.2> Descriptor coding

// ----- network_name_descriptor / bouquet_name_descriptor -------------------------------------------------------------

type NetworkName struct {
	NetworkName string
}

func decodeNetworkName(r *field.Reader) *NetworkName {
	return &NetworkName{NetworkName: r.Text(r.Remaining())}
}

func (v *NetworkName) Name() string { return "network_name" }

func (v *NetworkName) fill(rec *record.Record) {
	rec.Str("network_name", v.NetworkName)
}

type BouquetName struct {
	BouquetName string
}

func decodeBouquetName(r *field.Reader) *BouquetName {
	return &BouquetName{BouquetName: r.Text(r.Remaining())}
}

func (v *BouquetName) Name() string { return "bouquet_name" }

func (v *BouquetName) fill(rec *record.Record) {
	rec.Str("bouquet_name", v.BouquetName)
}

// ----- service_list_descriptor ---------------------------------------------------------------------------------------

// ServiceList
//
// -----loop-----
// service_id               [16b]
// service_type             [8b]
// --------------
type ServiceList struct {
	Services []ServiceListEntry
}

type ServiceListEntry struct {
	ServiceId   uint16
	ServiceType uint8
}

func decodeServiceList(r *field.Reader) *ServiceList {
	var v ServiceList
	for r.Remaining() > 0 {
		var e ServiceListEntry
		e.ServiceId = r.U16()
		e.ServiceType = r.U8()
		v.Services = append(v.Services, e)
	}
	return &v
}

func (v *ServiceList) Name() string { return "service_list" }

func (v *ServiceList) fill(rec *record.Record) {
	for _, e := range v.Services {
		rec.Child("services", record.New("service").
			Uint("service_id", uint64(e.ServiceId)).
			Uint("service_type", uint64(e.ServiceType)).
			Str("service_type_text", ServiceTypeText(e.ServiceType)))
	}
}

// ----- satellite_delivery_system_descriptor --------------------------------------------------------------------------

// SatelliteDelivery
//
// frequency                [32b] BCD, 单位10kHz
// orbital_position         [16b] BCD, 单位0.1度
// west_east_flag           [1b]
// polarization             [2b]
// roll_off                 [2b]  modulation_system为1时有效
// modulation_system        [1b]
// modulation_type          [2b]
// symbol_rate              [28b] BCD, 单位100 symbol/s
// FEC_inner                [4b]
type SatelliteDelivery struct {
	Frequency        uint64
	OrbitalPosition  uint64
	WestEast         uint8
	Polarization     uint8
	RollOff          uint8
	ModulationSystem uint8
	ModulationType   uint8
	SymbolRate       uint64
	FECInner         uint8
}

func decodeSatelliteDelivery(r *field.Reader) *SatelliteDelivery {
	var v SatelliteDelivery
	v.Frequency = r.Bcd(8)
	v.OrbitalPosition = r.Bcd(4)
	v.WestEast = r.Bits8(1)
	v.Polarization = r.Bits8(2)
	v.RollOff = r.Bits8(2)
	v.ModulationSystem = r.Bits8(1)
	v.ModulationType = r.Bits8(2)
	v.SymbolRate = r.Bcd(7)
	v.FECInner = r.Bits8(4)
	return &v
}

func (v *SatelliteDelivery) Name() string { return "satellite_delivery_system" }

func (v *SatelliteDelivery) fill(rec *record.Record) {
	we := "west"
	if v.WestEast == 1 {
		we = "east"
	}
	rec.Str("frequency", fmt.Sprintf("%d.%05d GHz", v.Frequency/100000, v.Frequency%100000)).
		Str("orbital_position", fmt.Sprintf("%d.%d %s", v.OrbitalPosition/10, v.OrbitalPosition%10, we)).
		Str("polarization", polarizationText[v.Polarization&0x03]).
		Str("modulation_system", map[uint8]string{0: "DVB-S", 1: "DVB-S2"}[v.ModulationSystem]).
		Uint("modulation_type", uint64(v.ModulationType)).
		Str("symbol_rate", fmt.Sprintf("%d.%04d Msymbol/s", v.SymbolRate/10000, v.SymbolRate%10000)).
		Str("FEC_inner", fecInnerText(v.FECInner))
	if v.ModulationSystem == 1 {
		rec.Str("roll_off", rollOffText[v.RollOff&0x03])
	}
}

var polarizationText = [4]string{"linear - horizontal", "linear - vertical", "circular - left", "circular - right"}
var rollOffText = [4]string{"α = 0,35", "α = 0,25", "α = 0,20", "reserved"}

// ----- cable_delivery_system_descriptor ------------------------------------------------------------------------------

// CableDelivery
//
// frequency                [32b] BCD, 单位100Hz
// reserved_future_use      [12b]
// FEC_outer                [4b]
// modulation               [8b]
// symbol_rate              [28b] BCD
// FEC_inner                [4b]
type CableDelivery struct {
	Frequency  uint64
	FECOuter   uint8
	Modulation uint8
	SymbolRate uint64
	FECInner   uint8
}

func decodeCableDelivery(r *field.Reader) *CableDelivery {
	var v CableDelivery
	v.Frequency = r.Bcd(8)
	r.Skip(12)
	v.FECOuter = r.Bits8(4)
	v.Modulation = r.U8()
	v.SymbolRate = r.Bcd(7)
	v.FECInner = r.Bits8(4)
	return &v
}

func (v *CableDelivery) Name() string { return "cable_delivery_system" }

func (v *CableDelivery) fill(rec *record.Record) {
	rec.Str("frequency", fmt.Sprintf("%d.%04d MHz", v.Frequency/10000, v.Frequency%10000)).
		Uint("FEC_outer", uint64(v.FECOuter)).
		Str("modulation", cableModulationText(v.Modulation)).
		Str("symbol_rate", fmt.Sprintf("%d.%04d Msymbol/s", v.SymbolRate/10000, v.SymbolRate%10000)).
		Str("FEC_inner", fecInnerText(v.FECInner))
}

func cableModulationText(m uint8) string {
	switch m {
	case 0x01:
		return "16-QAM"
	case 0x02:
		return "32-QAM"
	case 0x03:
		return "64-QAM"
	case 0x04:
		return "128-QAM"
	case 0x05:
		return "256-QAM"
	}
	return fmt.Sprintf("reserved(0x%02x)", m)
}

func fecInnerText(f uint8) string {
	switch f {
	case 0x0:
		return "not defined"
	case 0x1:
		return "1/2"
	case 0x2:
		return "2/3"
	case 0x3:
		return "3/4"
	case 0x4:
		return "5/6"
	case 0x5:
		return "7/8"
	case 0x6:
		return "8/9"
	case 0x7:
		return "3/5"
	case 0x8:
		return "4/5"
	case 0x9:
		return "9/10"
	case 0xF:
		return "no conv. coding"
	}
	return "reserved"
}

// ----- terrestrial_delivery_system_descriptor ------------------------------------------------------------------------

// TerrestrialDelivery
//
// centre_frequency         [32b] 单位10Hz
// bandwidth                [3b]
// priority                 [1b]
// Time_Slicing_indicator   [1b]
// MPE-FEC_indicator        [1b]
// reserved_future_use      [2b]
// constellation            [2b]
// hierarchy_information    [3b]
// code_rate-HP_stream      [3b]
// code_rate-LP_stream      [3b]
// guard_interval           [2b]
// transmission_mode        [2b]
// other_frequency_flag     [1b]
// reserved_future_use      [32b]
type TerrestrialDelivery struct {
	CentreFrequency  uint32
	Bandwidth        uint8
	Priority         bool
	TimeSlicing      bool
	MpeFec           bool
	Constellation    uint8
	Hierarchy        uint8
	CodeRateHP       uint8
	CodeRateLP       uint8
	GuardInterval    uint8
	TransmissionMode uint8
	OtherFrequency   bool
}

func decodeTerrestrialDelivery(r *field.Reader) *TerrestrialDelivery {
	var v TerrestrialDelivery
	v.CentreFrequency = r.U32()
	v.Bandwidth = r.Bits8(3)
	v.Priority = r.Flag()
	v.TimeSlicing = r.Flag()
	v.MpeFec = r.Flag()
	r.Skip(2)
	v.Constellation = r.Bits8(2)
	v.Hierarchy = r.Bits8(3)
	v.CodeRateHP = r.Bits8(3)
	v.CodeRateLP = r.Bits8(3)
	v.GuardInterval = r.Bits8(2)
	v.TransmissionMode = r.Bits8(2)
	v.OtherFrequency = r.Flag()
	r.Skip(32)
	return &v
}

func (v *TerrestrialDelivery) Name() string { return "terrestrial_delivery_system" }

// FrequencyHz centre_frequency单位是10Hz
func (v *TerrestrialDelivery) FrequencyHz() uint64 {
	return uint64(v.CentreFrequency) * 10
}

func (v *TerrestrialDelivery) fill(rec *record.Record) {
	rec.Uint("centre_frequency_hz", v.FrequencyHz()).
		Str("bandwidth", terrestrialBandwidthText(v.Bandwidth)).
		Bool("priority", v.Priority).
		Bool("time_slicing_indicator", v.TimeSlicing).
		Bool("MPE-FEC_indicator", v.MpeFec).
		Str("constellation", [4]string{"QPSK", "16-QAM", "64-QAM", "reserved"}[v.Constellation&0x03]).
		Uint("hierarchy_information", uint64(v.Hierarchy)).
		Str("code_rate_HP", terrestrialCodeRateText(v.CodeRateHP)).
		Str("code_rate_LP", terrestrialCodeRateText(v.CodeRateLP)).
		Str("guard_interval", [4]string{"1/32", "1/16", "1/8", "1/4"}[v.GuardInterval&0x03]).
		Str("transmission_mode", [4]string{"2k", "8k", "4k", "reserved"}[v.TransmissionMode&0x03]).
		Bool("other_frequency_flag", v.OtherFrequency)
}

func terrestrialBandwidthText(b uint8) string {
	switch b {
	case 0:
		return "8 MHz"
	case 1:
		return "7 MHz"
	case 2:
		return "6 MHz"
	case 3:
		return "5 MHz"
	}
	return "reserved"
}

func terrestrialCodeRateText(c uint8) string {
	switch c {
	case 0:
		return "1/2"
	case 1:
		return "2/3"
	case 2:
		return "3/4"
	case 3:
		return "5/6"
	case 4:
		return "7/8"
	}
	return "reserved"
}

// ----- service_descriptor --------------------------------------------------------------------------------------------

// Service
//
// service_type                   [8b]
// service_provider_name_length   [8b]
// service_provider_name
// service_name_length            [8b]
// service_name
type Service struct {
	ServiceType  uint8
	ProviderName string
	ServiceName  string
}

func decodeService(r *field.Reader) *Service {
	var v Service
	v.ServiceType = r.U8()
	v.ProviderName = r.Text8()
	v.ServiceName = r.Text8()
	return &v
}

func (v *Service) Name() string { return "service" }

func (v *Service) fill(rec *record.Record) {
	rec.Uint("service_type", uint64(v.ServiceType)).
		Str("service_type_text", ServiceTypeText(v.ServiceType)).
		Str("service_provider_name", v.ProviderName).
		Str("service_name", v.ServiceName)
}

// ServiceTypeText <ETSI EN 300 468> <table 87>
func ServiceTypeText(t uint8) string {
	switch t {
	case 0x01:
		return "digital television service"
	case 0x02:
		return "digital radio sound service"
	case 0x03:
		return "Teletext service"
	case 0x04:
		return "NVOD reference service"
	case 0x05:
		return "NVOD time-shifted service"
	case 0x06:
		return "mosaic service"
	case 0x07:
		return "FM radio service"
	case 0x0A:
		return "advanced codec digital radio sound service"
	case 0x0C:
		return "data broadcast service"
	case 0x10:
		return "DVB MHP service"
	case 0x11:
		return "MPEG-2 HD digital television service"
	case 0x16:
		return "advanced codec SD digital television service"
	case 0x19:
		return "advanced codec HD digital television service"
	case 0x1F:
		return "HEVC digital television service"
	}
	if t >= 0x80 && t <= 0xFE {
		return "user defined"
	}
	return "reserved"
}

// ----- short_event_descriptor ----------------------------------------------------------------------------------------

// ShortEvent
//
// ISO_639_language_code    [24b]
// event_name_length        [8b]
// event_name_char
// text_length              [8b]
// text_char
type ShortEvent struct {
	Language  string
	EventName string
	Text      string
}

func decodeShortEvent(r *field.Reader) *ShortEvent {
	var v ShortEvent
	v.Language = string(r.Bytes(3))
	v.EventName = r.Text8()
	v.Text = r.Text8()
	return &v
}

func (v *ShortEvent) Name() string { return "short_event" }

func (v *ShortEvent) fill(rec *record.Record) {
	rec.Str("ISO_639_language_code", v.Language).
		Str("event_name", v.EventName).
		Str("text", v.Text)
}

// ----- extended_event_descriptor -------------------------------------------------------------------------------------

// ExtendedEvent
//
// descriptor_number        [4b]
// last_descriptor_number   [4b]
// ISO_639_language_code    [24b]
// length_of_items          [8b]
// -----loop-----
// item_description_length  [8b]
// item_description_char
// item_length              [8b]
// item_char
// --------------
// text_length              [8b]
// text_char
type ExtendedEvent struct {
	DescriptorNumber     uint8
	LastDescriptorNumber uint8
	Language             string
	Items                []ExtendedEventItem
	Text                 string
}

type ExtendedEventItem struct {
	Description string
	Item        string
}

func decodeExtendedEvent(r *field.Reader) *ExtendedEvent {
	var v ExtendedEvent
	v.DescriptorNumber = r.Bits8(4)
	v.LastDescriptorNumber = r.Bits8(4)
	v.Language = string(r.Bytes(3))
	items := field.NewReader(r.Bytes(int(r.U8())), "extended_event items")
	for items.Remaining() > 0 {
		var it ExtendedEventItem
		it.Description = items.Text8()
		it.Item = items.Text8()
		v.Items = append(v.Items, it)
	}
	v.Text = r.Text8()
	return &v
}

func (v *ExtendedEvent) Name() string { return "extended_event" }

func (v *ExtendedEvent) fill(rec *record.Record) {
	rec.Uint("descriptor_number", uint64(v.DescriptorNumber)).
		Uint("last_descriptor_number", uint64(v.LastDescriptorNumber)).
		Str("ISO_639_language_code", v.Language).
		Str("text", v.Text)
	for _, it := range v.Items {
		rec.Child("items", record.New("item").
			Str("item_description", it.Description).
			Str("item", it.Item))
	}
}

// ----- component_descriptor ------------------------------------------------------------------------------------------

// Component
//
// stream_content_ext       [4b]
// stream_content           [4b]
// component_type           [8b]
// component_tag            [8b]
// ISO_639_language_code    [24b]
// text_char
type Component struct {
	StreamContentExt uint8
	StreamContent    uint8
	ComponentType    uint8
	ComponentTag     uint8
	Language         string
	Text             string
}

func decodeComponent(r *field.Reader) *Component {
	var v Component
	v.StreamContentExt = r.Bits8(4)
	v.StreamContent = r.Bits8(4)
	v.ComponentType = r.U8()
	v.ComponentTag = r.U8()
	v.Language = string(r.Bytes(3))
	v.Text = r.Text(r.Remaining())
	return &v
}

func (v *Component) Name() string { return "component" }

func (v *Component) fill(rec *record.Record) {
	rec.Uint("stream_content_ext", uint64(v.StreamContentExt)).
		Uint("stream_content", uint64(v.StreamContent)).
		Uint("component_type", uint64(v.ComponentType)).
		Uint("component_tag", uint64(v.ComponentTag)).
		Str("ISO_639_language_code", v.Language).
		Str("text", v.Text)
}

// ----- stream_identifier_descriptor ----------------------------------------------------------------------------------

type StreamIdentifier struct {
	ComponentTag uint8
}

func decodeStreamIdentifier(r *field.Reader) *StreamIdentifier {
	return &StreamIdentifier{ComponentTag: r.U8()}
}

func (v *StreamIdentifier) Name() string { return "stream_identifier" }

func (v *StreamIdentifier) fill(rec *record.Record) {
	rec.Uint("component_tag", uint64(v.ComponentTag))
}

// ----- CA_identifier_descriptor --------------------------------------------------------------------------------------

type CAIdentifier struct {
	CASystemIds []uint16
}

func decodeCAIdentifier(r *field.Reader) *CAIdentifier {
	var v CAIdentifier
	for r.Remaining() > 0 {
		v.CASystemIds = append(v.CASystemIds, r.U16())
	}
	return &v
}

func (v *CAIdentifier) Name() string { return "CA_identifier" }

func (v *CAIdentifier) fill(rec *record.Record) {
	for _, id := range v.CASystemIds {
		rec.Child("CA_system_ids", record.New("CA_system").Uint("CA_system_id", uint64(id)))
	}
}

// ----- content_descriptor --------------------------------------------------------------------------------------------

// Content
//
// -----loop-----
// content_nibble_level_1   [4b]
// content_nibble_level_2   [4b]
// user_byte                [8b]
// --------------
type Content struct {
	Entries []ContentEntry
}

type ContentEntry struct {
	Level1   uint8
	Level2   uint8
	UserByte uint8
}

func decodeContent(r *field.Reader) *Content {
	var v Content
	for r.Remaining() > 0 {
		var e ContentEntry
		e.Level1 = r.Bits8(4)
		e.Level2 = r.Bits8(4)
		e.UserByte = r.U8()
		v.Entries = append(v.Entries, e)
	}
	return &v
}

func (v *Content) Name() string { return "content" }

func (v *Content) fill(rec *record.Record) {
	for _, e := range v.Entries {
		rec.Child("contents", record.New("content").
			Uint("content_nibble_level_1", uint64(e.Level1)).
			Uint("content_nibble_level_2", uint64(e.Level2)).
			Str("genre", contentGenreText[e.Level1&0x0F]).
			Uint("user_byte", uint64(e.UserByte)))
	}
}

// <ETSI EN 300 468> <table 29>, 只到level 1
var contentGenreText = [16]string{
	"undefined content",
	"Movie/Drama",
	"News/Current affairs",
	"Show/Game show",
	"Sports",
	"Children's/Youth programmes",
	"Music/Ballet/Dance",
	"Arts/Culture (without music)",
	"Social/Political issues/Economics",
	"Education/Science/Factual topics",
	"Leisure hobbies",
	"Special characteristics",
	"Adult",
	"reserved",
	"reserved",
	"user defined",
}

// ----- parental_rating_descriptor ------------------------------------------------------------------------------------

type ParentalRating struct {
	Ratings []ParentalRatingEntry
}

type ParentalRatingEntry struct {
	CountryCode string
	Rating      uint8
}

// MinimumAge rating为0x01 ~ 0x0F时，最小年龄 = rating + 3
func (e ParentalRatingEntry) MinimumAge() int {
	if e.Rating >= 0x01 && e.Rating <= 0x0F {
		return int(e.Rating) + 3
	}
	return 0
}

func decodeParentalRating(r *field.Reader) *ParentalRating {
	var v ParentalRating
	for r.Remaining() > 0 {
		var e ParentalRatingEntry
		e.CountryCode = string(r.Bytes(3))
		e.Rating = r.U8()
		v.Ratings = append(v.Ratings, e)
	}
	return &v
}

func (v *ParentalRating) Name() string { return "parental_rating" }

func (v *ParentalRating) fill(rec *record.Record) {
	for _, e := range v.Ratings {
		rec.Child("ratings", record.New("rating").
			Str("country_code", e.CountryCode).
			Uint("rating", uint64(e.Rating)).
			Int("minimum_age", int64(e.MinimumAge())))
	}
}

// ----- teletext_descriptor / VBI_teletext_descriptor -----------------------------------------------------------------

// Teletext
//
// -----loop-----
// ISO_639_language_code    [24b]
// teletext_type            [5b]
// teletext_magazine_number [3b]
// teletext_page_number     [8b]
// --------------
type Teletext struct {
	Pages []TeletextPage
}

type TeletextPage struct {
	Language       string
	Type           uint8
	MagazineNumber uint8
	PageNumber     uint8
}

// Page 页号通常以三位数显示，magazine为0时表示8
func (p TeletextPage) Page() int {
	m := int(p.MagazineNumber)
	if m == 0 {
		m = 8
	}
	return m*100 + int(p.PageNumber>>4)*10 + int(p.PageNumber&0x0F)
}

func decodeTeletext(r *field.Reader) *Teletext {
	var v Teletext
	for r.Remaining() > 0 {
		var p TeletextPage
		p.Language = string(r.Bytes(3))
		p.Type = r.Bits8(5)
		p.MagazineNumber = r.Bits8(3)
		p.PageNumber = r.U8()
		v.Pages = append(v.Pages, p)
	}
	return &v
}

func (v *Teletext) Name() string { return "teletext" }

func (v *Teletext) fill(rec *record.Record) {
	for _, p := range v.Pages {
		rec.Child("pages", record.New("page").
			Str("ISO_639_language_code", p.Language).
			Uint("teletext_type", uint64(p.Type)).
			Str("teletext_type_text", teletextTypeText(p.Type)).
			Uint("teletext_magazine_number", uint64(p.MagazineNumber)).
			Uint("teletext_page_number", uint64(p.PageNumber)).
			Int("page", int64(p.Page())))
	}
}

func teletextTypeText(t uint8) string {
	switch t {
	case 0x01:
		return "initial Teletext page"
	case 0x02:
		return "Teletext subtitle page"
	case 0x03:
		return "additional information page"
	case 0x04:
		return "programme schedule page"
	case 0x05:
		return "Teletext subtitle page for hearing impaired people"
	}
	return "reserved"
}

// ----- local_time_offset_descriptor ----------------------------------------------------------------------------------

// LocalTimeOffset
//
// -----loop-----
// country_code             [24b]
// country_region_id        [6b]
// reserved                 [1b]
// local_time_offset_polarity [1b]
// local_time_offset        [16b] BCD hhmm
// time_of_change           [40b]
// next_time_offset         [16b] BCD hhmm
// --------------
type LocalTimeOffset struct {
	Entries []LocalTimeOffsetEntry
}

type LocalTimeOffsetEntry struct {
	CountryCode    string
	RegionId       uint8
	Negative       bool
	Offset         time.Duration
	TimeOfChange   field.DateTime
	NextTimeOffset time.Duration
}

func decodeLocalTimeOffset(r *field.Reader) *LocalTimeOffset {
	var v LocalTimeOffset
	for r.Remaining() > 0 {
		var e LocalTimeOffsetEntry
		e.CountryCode = string(r.Bytes(3))
		e.RegionId = r.Bits8(6)
		r.Skip(1)
		e.Negative = r.Flag()
		e.Offset = r.Duration(2)
		e.TimeOfChange = r.UtcDateTime()
		e.NextTimeOffset = r.Duration(2)
		v.Entries = append(v.Entries, e)
	}
	return &v
}

func (v *LocalTimeOffset) Name() string { return "local_time_offset" }

func (v *LocalTimeOffset) fill(rec *record.Record) {
	for _, e := range v.Entries {
		sign := "+"
		if e.Negative {
			sign = "-"
		}
		rec.Child("offsets", record.New("offset").
			Str("country_code", e.CountryCode).
			Uint("country_region_id", uint64(e.RegionId)).
			Str("local_time_offset", sign+e.Offset.String()).
			Str("time_of_change", e.TimeOfChange.String()).
			Str("next_time_offset", sign+e.NextTimeOffset.String()))
	}
}

// ----- subtitling_descriptor -----------------------------------------------------------------------------------------

// Subtitling
//
// -----loop-----
// ISO_639_language_code    [24b]
// subtitling_type          [8b]
// composition_page_id      [16b]
// ancillary_page_id        [16b]
// --------------
type Subtitling struct {
	Entries []SubtitlingEntry
}

type SubtitlingEntry struct {
	Language          string
	SubtitlingType    uint8
	CompositionPageId uint16
	AncillaryPageId   uint16
}

func decodeSubtitling(r *field.Reader) *Subtitling {
	var v Subtitling
	for r.Remaining() > 0 {
		var e SubtitlingEntry
		e.Language = string(r.Bytes(3))
		e.SubtitlingType = r.U8()
		e.CompositionPageId = r.U16()
		e.AncillaryPageId = r.U16()
		v.Entries = append(v.Entries, e)
	}
	return &v
}

func (v *Subtitling) Name() string { return "subtitling" }

func (v *Subtitling) fill(rec *record.Record) {
	for _, e := range v.Entries {
		rec.Child("subtitles", record.New("subtitle").
			Str("ISO_639_language_code", e.Language).
			Uint("subtitling_type", uint64(e.SubtitlingType)).
			Uint("composition_page_id", uint64(e.CompositionPageId)).
			Uint("ancillary_page_id", uint64(e.AncillaryPageId)))
	}
}

// ----- private_data_specifier_descriptor -----------------------------------------------------------------------------

type PrivateDataSpecifier struct {
	PrivateDataSpecifier uint32
}

func decodePrivateDataSpecifier(r *field.Reader) *PrivateDataSpecifier {
	return &PrivateDataSpecifier{PrivateDataSpecifier: r.U32()}
}

func (v *PrivateDataSpecifier) Name() string { return "private_data_specifier" }

func (v *PrivateDataSpecifier) fill(rec *record.Record) {
	rec.Uint("private_data_specifier", uint64(v.PrivateDataSpecifier))
	if s := fourCC(v.PrivateDataSpecifier); s != "" {
		rec.Str("private_data_specifier_text", s)
	}
}

// ----- data_broadcast_id_descriptor ----------------------------------------------------------------------------------

type DataBroadcastId struct {
	DataBroadcastId uint16
	Selector        []byte
}

func decodeDataBroadcastId(r *field.Reader) *DataBroadcastId {
	var v DataBroadcastId
	v.DataBroadcastId = r.U16()
	v.Selector = r.Bytes(r.Remaining())
	return &v
}

func (v *DataBroadcastId) Name() string { return "data_broadcast_id" }

func (v *DataBroadcastId) fill(rec *record.Record) {
	rec.Uint("data_broadcast_id", uint64(v.DataBroadcastId))
	if len(v.Selector) != 0 {
		rec.Str("id_selector", fmt.Sprintf("% x", v.Selector))
	}
}
