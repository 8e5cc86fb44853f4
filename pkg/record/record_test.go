// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package record_test

import (
	"strings"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/assert"
)

func TestRecord(t *testing.T) {
	r := record.New("section").Uint("table_id", 0x42).Str("name", "SDT").Bool("current_next", true)
	r.Child("descriptors", record.New("descriptor").Uint("tag", 0x48).Diag("truncated"), nil)
	r.Child("descriptors", record.New("descriptor").Uint("tag", 0x5f))
	r.Diag("first")

	f, ok := r.Field("table_id")
	assert.Equal(t, true, ok)
	assert.Equal(t, uint64(0x42), f.Uint)
	assert.Equal(t, uint64(0x42), f.Value())

	_, ok = r.Field("nope")
	assert.Equal(t, false, ok)

	assert.Equal(t, 2, len(r.List("descriptors")))
	assert.Equal(t, 0, len(r.List("nope")))
	assert.Equal(t, 2, r.DiagnosticCount())

	out := r.Dump()
	assert.Equal(t, true, strings.Contains(out, `name="SDT"`))
	assert.Equal(t, true, strings.Contains(out, "descriptors: 2 entries"))
	assert.Equal(t, true, strings.Contains(out, "! truncated"))
}
