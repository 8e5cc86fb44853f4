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
	"strings"
	"unicode/utf8"

	"github.com/q191201771/dvbinspect/pkg/base"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// ETSI EN 300 468 Annex A, Character coding for text fields
//
// 第一个字节小于0x20时为字符集选择
//   0x01 ~ 0x0B      ISO/IEC 8859-5 ~ 8859-15
//   0x10 0x00 page   ISO/IEC 8859-page
//   0x11             ISO/IEC 10646 BMP (UCS-2 big endian)
//   0x12             KS X 1001-2004
//   0x13             GB-2312-1980
//   0x14             Big5
//   0x15             UTF-8
// 否则使用默认字符表 (ISO/IEC 6937 + euro)
//
// 对于单字节字符表，0x80 ~ 0x9F 的控制码在解码前被去掉

type Charset struct {
	Name string

	enc    encoding.Encoding // nil means the default table
	single bool
}

var (
	CharsetDefault = Charset{Name: "ISO6937", single: true}
	CharsetUcs2    = Charset{Name: "ISO10646", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	CharsetUtf8    = Charset{Name: "UTF-8", enc: encoding.Nop}
	CharsetKsx1001 = Charset{Name: "KSX1001", enc: korean.EUCKR}
	CharsetGb2312  = Charset{Name: "GB2312", enc: simplifiedchinese.GBK}
	CharsetBig5    = Charset{Name: "Big5", enc: traditionalchinese.Big5}
)

// iso8859 index by part number. 8859-12 was never published.
var iso8859 = map[int]Charset{
	1:  {Name: "ISO-8859-1", enc: charmap.ISO8859_1, single: true},
	2:  {Name: "ISO-8859-2", enc: charmap.ISO8859_2, single: true},
	3:  {Name: "ISO-8859-3", enc: charmap.ISO8859_3, single: true},
	4:  {Name: "ISO-8859-4", enc: charmap.ISO8859_4, single: true},
	5:  {Name: "ISO-8859-5", enc: charmap.ISO8859_5, single: true},
	6:  {Name: "ISO-8859-6", enc: charmap.ISO8859_6, single: true},
	7:  {Name: "ISO-8859-7", enc: charmap.ISO8859_7, single: true},
	8:  {Name: "ISO-8859-8", enc: charmap.ISO8859_8, single: true},
	9:  {Name: "ISO-8859-9", enc: charmap.ISO8859_9, single: true},
	10: {Name: "ISO-8859-10", enc: charmap.ISO8859_10, single: true},
	11: {Name: "ISO-8859-11", enc: charmap.Windows874, single: true},
	13: {Name: "ISO-8859-13", enc: charmap.ISO8859_13, single: true},
	14: {Name: "ISO-8859-14", enc: charmap.ISO8859_14, single: true},
	15: {Name: "ISO-8859-15", enc: charmap.ISO8859_15, single: true},
	16: {Name: "ISO-8859-16", enc: charmap.ISO8859_16, single: true},
}

// SelectCharset 解析字符集选择前缀
//
// @return cs:   选中的字符集，无法识别时为CharsetDefault
// @return skip: 选择前缀占用的字节数
// @return err:  前缀存在但是无法识别时为ErrCharsetDecodeFailure，此时仍然可以使用cs继续解码
func SelectCharset(b []byte) (cs Charset, skip int, err error) {
	if len(b) == 0 || b[0] >= 0x20 {
		return CharsetDefault, 0, nil
	}

	first := b[0]
	switch {
	case first >= 0x01 && first <= 0x0B:
		part := int(first) + 4
		if c, ok := iso8859[part]; ok {
			return c, 1, nil
		}
		return CharsetDefault, 1, fmt.Errorf("%w. selector=0x%02x, charset=ISO-8859-%d", base.ErrCharsetDecodeFailure, first, part)
	case first == 0x10:
		if len(b) < 3 {
			return CharsetDefault, len(b), base.NewErrTruncatedInput(3, len(b), "charset selector")
		}
		page := int(b[1])<<8 | int(b[2])
		if c, ok := iso8859[page]; ok {
			return c, 3, nil
		}
		return CharsetDefault, 3, fmt.Errorf("%w. selector=0x10, page=%d", base.ErrCharsetDecodeFailure, page)
	case first == 0x11:
		return CharsetUcs2, 1, nil
	case first == 0x12:
		return CharsetKsx1001, 1, nil
	case first == 0x13:
		return CharsetGb2312, 1, nil
	case first == 0x14:
		return CharsetBig5, 1, nil
	case first == 0x15:
		return CharsetUtf8, 1, nil
	}
	return CharsetDefault, 1, fmt.Errorf("%w. selector=0x%02x", base.ErrCharsetDecodeFailure, first)
}

// ReadText 解析DVB文本字段
//
// 返回的error不为nil时，字符串仍然是按默认字符表尽力解码后的结果
func ReadText(b []byte, off int, n int) (string, error) {
	region, err := Region(b, off, n)
	s, derr := DecodeText(region)
	if err != nil {
		return s, err
	}
	return s, derr
}

func DecodeText(b []byte) (string, error) {
	cs, skip, err := SelectCharset(b)
	payload := b[skip:]

	if cs.single {
		payload = stripControlCodes(payload)
	}

	if cs.enc == nil {
		return decodeIso6937(payload), err
	}

	out, derr := cs.enc.NewDecoder().Bytes(payload)
	if derr != nil {
		if err == nil {
			err = fmt.Errorf("%w. charset=%s, err=%v", base.ErrCharsetDecodeFailure, cs.Name, derr)
		}
		return decodeIso6937(stripControlCodes(payload)), err
	}
	if cs.Name == CharsetUtf8.Name && !utf8.Valid(out) {
		if err == nil {
			err = fmt.Errorf("%w. charset=%s, invalid utf8", base.ErrCharsetDecodeFailure, cs.Name)
		}
		return strings.ToValidUTF8(string(out), string(utf8.RuneError)), err
	}
	return string(out), err
}

func stripControlCodes(b []byte) []byte {
	keep := 0
	for _, c := range b {
		if c < 0x80 || c > 0x9F {
			keep++
		}
	}
	if keep == len(b) {
		return b
	}
	out := make([]byte, 0, keep)
	for _, c := range b {
		if c < 0x80 || c > 0x9F {
			out = append(out, c)
		}
	}
	return out
}

// decodeIso6937 0xC1 ~ 0xCF是不占位的变音符，作用于紧随其后的字母
func decodeIso6937(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < 0x80 {
			sb.WriteByte(c)
			continue
		}
		if mark, ok := iso6937Diacritics[c]; ok {
			if i+1 < len(b) && b[i+1] >= 0x20 && b[i+1] < 0x80 {
				sb.WriteString(norm.NFC.String(string([]rune{rune(b[i+1]), mark})))
				i++
			} else {
				sb.WriteRune(mark)
			}
			continue
		}
		if c < 0xA0 || iso6937Upper[c-0xA0] == 0 {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteRune(iso6937Upper[c-0xA0])
	}
	return sb.String()
}

var iso6937Diacritics = map[byte]rune{
	0xC1: 0x0300, // grave
	0xC2: 0x0301, // acute
	0xC3: 0x0302, // circumflex
	0xC4: 0x0303, // tilde
	0xC5: 0x0304, // macron
	0xC6: 0x0306, // breve
	0xC7: 0x0307, // dot above
	0xC8: 0x0308, // diaeresis
	0xCA: 0x030A, // ring
	0xCB: 0x0327, // cedilla
	0xCD: 0x030B, // double acute
	0xCE: 0x0328, // ogonek
	0xCF: 0x030C, // caron
}

// 0xA0 ~ 0xFF，0表示未定义
var iso6937Upper = [96]rune{
	0x00A0, 0x00A1, 0x00A2, 0x00A3, 0x20AC, 0x00A5, 0x0023, 0x00A7, // A0
	0x00A4, 0x2018, 0x201C, 0x00AB, 0x2190, 0x2191, 0x2192, 0x2193, // A8
	0x00B0, 0x00B1, 0x00B2, 0x00B3, 0x00D7, 0x00B5, 0x00B6, 0x00B7, // B0
	0x00F7, 0x2019, 0x201D, 0x00BB, 0x00BC, 0x00BD, 0x00BE, 0x00BF, // B8
	0, 0, 0, 0, 0, 0, 0, 0, // C0, diacritics handled above
	0, 0, 0, 0, 0, 0, 0, 0, // C8
	0x2015, 0x00B9, 0x00AE, 0x00A9, 0x2122, 0x266A, 0x00AC, 0x00A6, // D0
	0, 0, 0, 0, 0x215B, 0x215C, 0x215D, 0x215E, // D8
	0x2126, 0x00C6, 0x0110, 0x00AA, 0x0126, 0, 0x0132, 0x013F, // E0
	0x0141, 0x00D8, 0x0152, 0x00BA, 0x00DE, 0x0166, 0x014A, 0x0149, // E8
	0x0138, 0x00E6, 0x0111, 0x00F0, 0x0127, 0x0131, 0x0133, 0x0140, // F0
	0x0142, 0x00F8, 0x0153, 0x00DF, 0x00FE, 0x0167, 0x014B, 0x00AD, // F8
}
