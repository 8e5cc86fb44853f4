// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac_test

import (
	"testing"

	"github.com/q191201771/dvbinspect/pkg/aac"
	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/assert"
)

// AAC LC, 44100, 2 channels, frame length 0x175
var goldenAdtsHeader = []byte{0xFF, 0xF1, 0x50, 0x80, 0x2E, 0xBF, 0xFC}

func TestAdtsHeaderContext(t *testing.T) {
	ctx, err := aac.NewAdtsHeaderContext(goldenAdtsHeader)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(0), ctx.Id)
	assert.Equal(t, uint8(1), ctx.ProtectionAbsent)
	assert.Equal(t, uint8(2), ctx.AscCtx.AudioObjectType)
	assert.Equal(t, "AAC LC", ctx.AscCtx.AudioObjectTypeReadable())
	assert.Equal(t, uint8(4), ctx.AscCtx.SamplingFrequencyIndex)
	assert.Equal(t, uint8(2), ctx.AscCtx.ChannelConfiguration)
	assert.Equal(t, uint16(0x175), ctx.AdtsLength)
	assert.Equal(t, uint16(0x7FF), ctx.BufferFullness)
	assert.Equal(t, uint8(1), ctx.NumRawDataBlocks)
	assert.Equal(t, aac.AdtsHeaderLength, ctx.HeaderLength())

	sf, err := ctx.AscCtx.GetSamplingFrequency()
	assert.Equal(t, nil, err)
	assert.Equal(t, 44100, sf)

	r := record.New("adts")
	ctx.Fill(r)
	f, ok := r.Field("sampling_frequency")
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(44100), f.Int)
}

func TestAdtsHeaderContextInvalid(t *testing.T) {
	_, err := aac.NewAdtsHeaderContext(goldenAdtsHeader[:5])
	assert.Equal(t, true, base.IsTruncated(err))

	_, err = aac.NewAdtsHeaderContext([]byte{0xFF, 0x01, 0x50, 0x80, 0x2E, 0xBF, 0xFC})
	assert.IsNotNil(t, err)

	asc := aac.AscContext{SamplingFrequencyIndex: 15}
	_, err = asc.GetSamplingFrequency()
	assert.IsNotNil(t, err)
}
