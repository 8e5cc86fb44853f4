// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"encoding/hex"

	mp4avc "github.com/Eyevinn/mp4ff/avc"
	"github.com/q191201771/naza/pkg/nazabytes"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// Context SPS中用于展示的字段
type Context struct {
	Profile uint8
	Level   uint8
	Width   uint32
	Height  uint32
}

// ParseSps
//
// @param payload 包含nal header的1字节，不包含start code
func ParseSps(payload []byte, ctx *Context) error {
	if len(payload) < 4 || ParseNaluType(payload[0]) != NaluTypeSps {
		return nazaerrors.Wrap(ErrAvc)
	}
	sps, err := mp4avc.ParseSPSNALUnit(payload, false)
	if err != nil {
		Log.Debugf("parse sps failed. err=%+v, payload=%s", err, hex.Dump(nazabytes.Prefix(payload, 128)))
		return nazaerrors.Wrap(err)
	}
	ctx.Profile = uint8(sps.Profile)
	ctx.Level = uint8(sps.Level)
	ctx.Width = uint32(sps.Width)
	ctx.Height = uint32(sps.Height)
	return nil
}
