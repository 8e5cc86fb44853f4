// Copyright 2021, Chef.  All rights reserved.
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

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	// ErrTruncatedInput region shorter than its declared length, decode what is present
	ErrTruncatedInput = errors.New("dvbinspect: truncated input")

	// ErrUnknownTag non-fatal, the entry is kept as opaque bytes
	ErrUnknownTag = errors.New("dvbinspect: unknown tag")
)

// ----- pkg/field -----------------------------------------------------------------------------------------------------

var (
	ErrMalformedBcd         = errors.New("dvbinspect.field: malformed bcd")
	ErrCharsetDecodeFailure = errors.New("dvbinspect.field: charset decode failure")
)

// ----- pkg/psi -------------------------------------------------------------------------------------------------------

var (
	ErrMalformedSection         = errors.New("dvbinspect.psi: malformed section")
	ErrVersionConflict          = errors.New("dvbinspect.psi: version conflict")
	ErrAmbiguousVersionDistance = errors.New("dvbinspect.psi: ambiguous version distance")
)

// ----- pkg/pes -------------------------------------------------------------------------------------------------------

var (
	ErrMalformedPes   = errors.New("dvbinspect.pes: malformed pes header")
	ErrFrameMalformed = errors.New("dvbinspect.pes: malformed frame")
)

// ----- pkg/dvbsub ----------------------------------------------------------------------------------------------------

var ErrMalformedSegment = errors.New("dvbinspect.dvbsub: malformed segment")

// ----- pkg/tsfeed ----------------------------------------------------------------------------------------------------

var ErrCrcMismatch = errors.New("dvbinspect.tsfeed: crc mismatch")

// ---------------------------------------------------------------------------------------------------------------------

func NewErrTruncatedInput(need, actual int, unit string) error {
	return fmt.Errorf("%w. need=%d, actual=%d, unit=%s", ErrTruncatedInput, need, actual, unit)
}

func NewErrMalformedBcd(nibble uint8, pos int) error {
	return fmt.Errorf("%w. nibble=0x%x, pos=%d", ErrMalformedBcd, nibble, pos)
}

func NewErrVersionConflict(tableId uint8, key uint32, version uint8, sectionNumber uint8) error {
	return fmt.Errorf("%w. table_id=0x%02x, key=%d, version=%d, section=%d",
		ErrVersionConflict, tableId, key, version, sectionNumber)
}

func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedInput)
}
