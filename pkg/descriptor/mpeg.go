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

	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// <iso13818-1.pdf> <2.6> Program and program element descriptors

// ----- registration_descriptor ---------------------------------------------------------------------------------------

// Registration
//
// format_identifier        [32b]
// additional_identification_info
type Registration struct {
	FormatIdentifier uint32
	AdditionalInfo   []byte
}

func decodeRegistration(r *field.Reader) *Registration {
	var v Registration
	v.FormatIdentifier = r.U32()
	v.AdditionalInfo = r.Bytes(r.Remaining())
	return &v
}

func (v *Registration) Name() string { return "registration" }

func (v *Registration) fill(rec *record.Record) {
	rec.Uint("format_identifier", uint64(v.FormatIdentifier)).
		Str("format_identifier_text", fourCC(v.FormatIdentifier))
	if len(v.AdditionalInfo) != 0 {
		rec.Str("additional_identification_info", fmt.Sprintf("% x", v.AdditionalInfo))
	}
}

// ----- CA_descriptor -------------------------------------------------------------------------------------------------

// CA
//
// CA_system_ID             [16b]
// reserved                 [3b]
// CA_PID                   [13b]
// private_data_byte
type CA struct {
	CASystemId  uint16
	CAPid       uint16
	PrivateData []byte
}

func decodeCA(r *field.Reader) *CA {
	var v CA
	v.CASystemId = r.U16()
	r.Skip(3)
	v.CAPid = r.Bits16(13)
	v.PrivateData = r.Bytes(r.Remaining())
	return &v
}

func (v *CA) Name() string { return "CA" }

func (v *CA) fill(rec *record.Record) {
	rec.Uint("CA_system_id", uint64(v.CASystemId)).
		Uint("CA_PID", uint64(v.CAPid))
	if len(v.PrivateData) != 0 {
		rec.Str("private_data", fmt.Sprintf("% x", v.PrivateData))
	}
}

// ----- ISO_639_language_descriptor -----------------------------------------------------------------------------------

// ISO639Language
//
// -----loop-----
// ISO_639_language_code    [24b]
// audio_type               [8b]
// --------------
type ISO639Language struct {
	Languages []ISO639LanguageEntry
}

type ISO639LanguageEntry struct {
	Code      string
	AudioType uint8
}

func decodeISO639Language(r *field.Reader) *ISO639Language {
	var v ISO639Language
	for r.Remaining() > 0 {
		var e ISO639LanguageEntry
		e.Code = string(r.Bytes(3))
		e.AudioType = r.U8()
		v.Languages = append(v.Languages, e)
	}
	return &v
}

func (v *ISO639Language) Name() string { return "ISO_639_language" }

func (v *ISO639Language) fill(rec *record.Record) {
	for _, e := range v.Languages {
		rec.Child("languages", record.New("language").
			Str("ISO_639_language_code", e.Code).
			Uint("audio_type", uint64(e.AudioType)).
			Str("audio_type_text", audioTypeText(e.AudioType)))
	}
}

func audioTypeText(t uint8) string {
	switch t {
	case 0:
		return "undefined"
	case 1:
		return "clean effects"
	case 2:
		return "hearing impaired"
	case 3:
		return "visual impaired commentary"
	}
	return "reserved"
}

// ----- maximum_bitrate_descriptor ------------------------------------------------------------------------------------

// MaximumBitrate
//
// reserved                 [2b]
// maximum_bitrate          [22b] 单位 50 bytes/second
type MaximumBitrate struct {
	MaximumBitrate uint32
}

func decodeMaximumBitrate(r *field.Reader) *MaximumBitrate {
	var v MaximumBitrate
	r.Skip(2)
	v.MaximumBitrate = r.Bits32(22)
	return &v
}

func (v *MaximumBitrate) Name() string { return "maximum_bitrate" }

// BitsPerSecond 换算成bit/s
func (v *MaximumBitrate) BitsPerSecond() uint64 {
	return uint64(v.MaximumBitrate) * 50 * 8
}

func (v *MaximumBitrate) fill(rec *record.Record) {
	rec.Uint("maximum_bitrate", uint64(v.MaximumBitrate)).
		Uint("bits_per_second", v.BitsPerSecond())
}

// ----- AVC_video_descriptor ------------------------------------------------------------------------------------------

// AVCVideo
//
// profile_idc              [8b]
// constraint_set0..5_flag  [6b]
// AVC_compatible_flags     [2b]
// level_idc                [8b]
// AVC_still_present        [1b]
// AVC_24_hour_picture_flag [1b]
// Frame_Packing_SEI_not_present_flag [1b]
// reserved                 [5b]
type AVCVideo struct {
	ProfileIdc            uint8
	ConstraintFlags       uint8
	CompatibleFlags       uint8
	LevelIdc              uint8
	StillPresent          bool
	Picture24Hour         bool
	FramePackingSEIAbsent bool
}

func decodeAVCVideo(r *field.Reader) *AVCVideo {
	var v AVCVideo
	v.ProfileIdc = r.U8()
	v.ConstraintFlags = r.Bits8(6)
	v.CompatibleFlags = r.Bits8(2)
	v.LevelIdc = r.U8()
	v.StillPresent = r.Flag()
	v.Picture24Hour = r.Flag()
	v.FramePackingSEIAbsent = r.Flag()
	r.Skip(5)
	return &v
}

func (v *AVCVideo) Name() string { return "AVC_video" }

func (v *AVCVideo) fill(rec *record.Record) {
	rec.Uint("profile_idc", uint64(v.ProfileIdc)).
		Uint("constraint_set_flags", uint64(v.ConstraintFlags)).
		Uint("AVC_compatible_flags", uint64(v.CompatibleFlags)).
		Uint("level_idc", uint64(v.LevelIdc)).
		Bool("AVC_still_present", v.StillPresent).
		Bool("AVC_24_hour_picture_flag", v.Picture24Hour).
		Bool("frame_packing_SEI_not_present_flag", v.FramePackingSEIAbsent)
}

// ---------------------------------------------------------------------------------------------------------------------

func fourCC(v uint32) string {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return ""
		}
	}
	return string(b)
}
