// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hevc_test

import (
	"testing"

	"github.com/q191201771/dvbinspect/pkg/hevc"
	"github.com/q191201771/naza/pkg/assert"
)

func TestParseNaluType(t *testing.T) {
	assert.Equal(t, hevc.NaluTypeVps, hevc.ParseNaluType(0x40))
	assert.Equal(t, hevc.NaluTypeSps, hevc.ParseNaluType(0x42))
	assert.Equal(t, hevc.NaluTypePps, hevc.ParseNaluType(0x44))
	assert.Equal(t, hevc.NaluTypeSliceIdr, hevc.ParseNaluType(0x26))
	assert.Equal(t, "IDR", hevc.ParseNaluTypeReadable(0x26))
	assert.Equal(t, "SEI", hevc.ParseNaluTypeReadable(0x4e))
	assert.Equal(t, "unknown", hevc.ParseNaluTypeReadable(0x7e))

	assert.Equal(t, true, hevc.IsIrapNalu(hevc.NaluTypeSliceCranut))
	assert.Equal(t, false, hevc.IsIrapNalu(hevc.NaluTypeSliceTrailR))
	assert.Equal(t, true, hevc.IsVclNalu(hevc.NaluTypeSliceTrailN))
	assert.Equal(t, false, hevc.IsVclNalu(hevc.NaluTypeAud))
}

func TestParseSpsRejected(t *testing.T) {
	var ctx hevc.Context
	assert.IsNotNil(t, hevc.ParseSps([]byte{0x40, 0x01, 0x0c, 0x01}, &ctx))
	assert.IsNotNil(t, hevc.ParseSps([]byte{0x42, 0x01}, &ctx))
	assert.IsNotNil(t, hevc.ParseSps([]byte{0x42, 0x01, 0x01, 0x01}, &ctx))
}
