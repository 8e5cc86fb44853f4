// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package field

import (
	"fmt"
	"time"
)

// ETSI EN 300 468 Annex C, Conversion between time and date conventions
//
// UTC_time 40bit: 16bit MJD + 24bit BCD hh mm ss

type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	// Undefined 40bit全为1，EIT中表示start_time未定义
	Undefined bool
}

func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, time.UTC)
}

func (dt DateTime) String() string {
	if dt.Undefined {
		return "undefined"
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// MjdToDate
//
//   Y' = int [ (MJD - 15 078,2) / 365,25 ]
//   M' = int { [ MJD - 14 956,1 - int (Y' × 365,25) ] / 30,6001 }
//   D  = MJD - 14 956 - int (Y' × 365,25) - int (M' × 30,6001 )
//   If M' = 14 or M' = 15, then K = 1; else K = 0
//   Y  = Y' + K
//   M  = M' - 1 - K × 12
func MjdToDate(mjd uint16) (year, month, day int) {
	m := float64(mjd)
	yp := int((m - 15078.2) / 365.25)
	mp := int((m - 14956.1 - float64(int(float64(yp)*365.25))) / 30.6001)
	day = int(mjd) - 14956 - int(float64(yp)*365.25) - int(float64(mp)*30.6001)
	k := 0
	if mp == 14 || mp == 15 {
		k = 1
	}
	year = yp + k + 1900
	month = mp - 1 - k*12
	return
}

// ReadUtcDateTime 读取5字节的UTC_time
//
// 时分秒的BCD有误时，日期部分仍然有效，同时返回ErrMalformedBcd
func ReadUtcDateTime(b []byte, off int) (DateTime, error) {
	var dt DateTime
	region, err := Region(b, off, 5)
	if err != nil {
		return dt, err
	}
	if region[0] == 0xFF && region[1] == 0xFF && region[2] == 0xFF && region[3] == 0xFF && region[4] == 0xFF {
		dt.Undefined = true
		return dt, nil
	}
	mjd := uint16(region[0])<<8 | uint16(region[1])
	dt.Year, dt.Month, dt.Day = MjdToDate(mjd)

	hms, err := ReadBcdUint(region, 4, 6)
	if err != nil {
		return dt, err
	}
	dt.Hour = int(hms / 10000)
	dt.Minute = int(hms / 100 % 100)
	dt.Second = int(hms % 100)
	return dt, nil
}

// ReadBcdDuration 读取3字节的BCD hhmmss，例如EIT的duration，TOT的local_time_offset使用前2字节
//
// @param n: 字节数，2 (hhmm) 或者 3 (hhmmss)
func ReadBcdDuration(b []byte, off int, n int) (time.Duration, error) {
	region, err := Region(b, off, n)
	if err != nil {
		return 0, err
	}
	v, err := ReadBcdUint(region, 0, n*2)
	if err != nil {
		return 0, err
	}
	var d time.Duration
	if n == 3 {
		d += time.Duration(v%100) * time.Second
		v /= 100
	}
	d += time.Duration(v%100)*time.Minute + time.Duration(v/100)*time.Hour
	return d, nil
}
