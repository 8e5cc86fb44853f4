// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// Diagnostic 挂在最小的解析单元上（一个descriptor、section、segment或frame），不会中断整个流的解析
type Diagnostic struct {
	Unit   string // e.g. "descriptor 0x48", "section 0x42/3"
	Offset int    // offset inside the enclosing region, -1 if unknown
	Err    error
}

func NewDiagnostic(unit string, offset int, err error) Diagnostic {
	return Diagnostic{
		Unit:   unit,
		Offset: offset,
		Err:    err,
	}
}

func (d Diagnostic) String() string {
	if d.Offset < 0 {
		return fmt.Sprintf("%s: %v", d.Unit, d.Err)
	}
	return fmt.Sprintf("%s@%d: %v", d.Unit, d.Offset, d.Err)
}

func (d Diagnostic) Is(target error) bool {
	return errors.Is(d.Err, target)
}

type Diagnostics []Diagnostic

func (ds *Diagnostics) Add(unit string, offset int, err error) {
	if err == nil {
		return
	}
	*ds = append(*ds, NewDiagnostic(unit, offset, err))
}

func (ds Diagnostics) Count(target error) int {
	n := 0
	for _, d := range ds {
		if d.Is(target) {
			n++
		}
	}
	return n
}

func (ds Diagnostics) Strings() []string {
	ret := make([]string, 0, len(ds))
	for _, d := range ds {
		ret = append(ret, d.String())
	}
	return ret
}
