// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsfeed

// Packer 把完整的section或者PES包重新切分成188字节的TS包
//
// 用于把某个PID的单元导出成单独的TS文件
type Packer struct {
	pid uint16
	cc  uint8 // continuity_counter of TS Header
}

func NewPacker(pid uint16) *Packer {
	return &Packer{pid: pid}
}

// PackSection section前面加上值为0的pointer_field
func (p *Packer) PackSection(section []byte) []byte {
	raw := make([]byte, 1+len(section))
	copy(raw[1:], section)
	return p.pack(raw)
}

func (p *Packer) PackPes(pes []byte) []byte {
	return p.pack(pes)
}

// pack
//
// 注意，内部会增加cc的值
//
// @return: 内存块为独立申请，长度是188的整数倍
//
func (p *Packer) pack(raw []byte) []byte {
	num := (len(raw) + payloadSize - 1) / payloadSize
	if num == 0 {
		num = 1
	}
	buf := make([]byte, num*PacketSize)

	lpos := 0 // 当前输入的处理位置
	for i := 0; i < num; i++ {
		packet := buf[i*PacketSize : (i+1)*PacketSize]

		// -----TS Header----------------
		// sync_byte
		// transport_error_indicator    0
		// payload_unit_start_indicator
		// transport_priority           0
		// PID
		// transport_scrambling_control 0
		// adaptation_field_control
		// continuity_counter
		// ------------------------------
		packet[0] = SyncByte
		if i == 0 {
			packet[1] = 0x40 // payload_unit_start_indicator
		}
		packet[1] |= uint8(p.pid>>8) & 0x1F // PID高5位
		packet[2] = uint8(p.pid & 0xFF)     // PID低8位
		packet[3] = 0x10 | p.cc&0x0F        // 先设置成无Adaptation
		p.cc++
		wpos := 4

		inSize := len(raw) - lpos // 剩余待打包大小
		if inSize < payloadSize {
			// 最后一个packet写不满，用Adaptation填充，真实数据放在packet尾部
			stuffSize := payloadSize - inSize
			packet[3] |= 0x20
			packet[4] = uint8(stuffSize - 1) // adaptation_field_length
			if stuffSize >= 2 {
				packet[5] = 0
				for j := 6; j < 4+stuffSize; j++ {
					packet[j] = 0xFF
				}
			}
			wpos += stuffSize
		}
		lpos += copy(packet[wpos:], raw[lpos:])
	}
	return buf
}
