// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/record"
)

type State uint8

const (
	StateEmpty State = iota
	StatePartial
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StatePartial:
		return "PARTIAL"
	case StateComplete:
		return "COMPLETE"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Outcome Table.Update的结果
type Outcome uint8

const (
	OutcomeStored     Outcome = iota + 1 // 填入空的slot，table仍然不完整
	OutcomeComplete                      // 填入空的slot，table变为完整
	OutcomeDuplicate                     // 相同版本，逐字节相同，轮播重传
	OutcomeReplaced                      // 新版本，整个table重建
	OutcomeStale                         // 旧版本，忽略
	OutcomeAmbiguous                     // 版本距离为16，无法判断新旧，保留现有的
	OutcomeConflict                      // 相同版本，内容不同，保留现有的
	OutcomeOutOfRange                    // 相同版本，section_number超出现有的slot数组，忽略
	OutcomeRepaired                      // 相同版本，替换掉slot中被截断的section
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeComplete:
		return "complete"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeStale:
		return "stale"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeConflict:
		return "conflict"
	case OutcomeOutOfRange:
		return "out of range"
	case OutcomeRepaired:
		return "repaired"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Changed 是否改变了table的内容
func (o Outcome) Changed() bool {
	return o == OutcomeStored || o == OutcomeComplete || o == OutcomeReplaced || o == OutcomeRepaired
}

const versionSpace = 32

// VersionDistance 循环前向距离 (v - existing) mod 32
func VersionDistance(v, existing uint8) uint8 {
	return (v - existing) & (versionSpace - 1)
}

// Table 一个Key对应的table实例，slot数组大小为last_section_number+1
//
// 所有方法都是并发安全的，同一个Table上的Update串行执行
type Table struct {
	key Key

	mu      sync.Mutex
	version uint8
	slots   []*Section
	filled  int
}

func NewTable(key Key) *Table {
	return &Table{key: key}
}

func (t *Table) Key() Key {
	return t.key
}

// Update 把section合并进table
//
// 返回的error只用于诊断（ErrVersionConflict、ErrAmbiguousVersionDistance），table始终处于一致的状态
func (t *Table) Update(s *Section) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.slots == nil {
		t.reset(s)
		return t.afterFill(OutcomeStored), nil
	}

	if s.Version != t.version {
		d := VersionDistance(s.Version, t.version)
		switch {
		case d < versionSpace/2:
			Log.Debugf("table version changed. key=%s, version=%d -> %d", t.key, t.version, s.Version)
			t.reset(s)
			return OutcomeReplaced, nil
		case d > versionSpace/2:
			return OutcomeStale, nil
		default:
			return OutcomeAmbiguous, fmt.Errorf("%w. key=%s, version=%d, existing=%d",
				base.ErrAmbiguousVersionDistance, t.key, s.Version, t.version)
		}
	}

	n := int(s.SectionNumber)
	if n >= len(t.slots) {
		return OutcomeOutOfRange, nil
	}
	existing := t.slots[n]
	if existing == nil {
		t.slots[n] = s
		t.filled++
		return t.afterFill(OutcomeStored), nil
	}
	if existing.Same(s) {
		return OutcomeDuplicate, nil
	}
	// 被截断的section只占位，之后到达的更完整的section替换它
	if existing.Truncated && (!s.Truncated || len(s.Raw) > len(existing.Raw)) {
		t.slots[n] = s
		return OutcomeRepaired, nil
	}
	if s.Truncated && bytes.HasPrefix(existing.Raw, s.Raw) {
		return OutcomeDuplicate, nil
	}
	return OutcomeConflict, base.NewErrVersionConflict(s.TableId, uint32(s.TableIdExtension), s.Version, s.SectionNumber)
}

func (t *Table) reset(s *Section) {
	t.version = s.Version
	t.slots = make([]*Section, int(s.LastSectionNumber)+1)
	t.slots[s.SectionNumber] = s
	t.filled = 1
}

func (t *Table) afterFill(o Outcome) Outcome {
	if t.filled == len(t.slots) {
		return OutcomeComplete
	}
	return o
}

func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Table) stateLocked() State {
	switch {
	case t.slots == nil:
		return StateEmpty
	case t.filled == len(t.slots):
		return StateComplete
	}
	return StatePartial
}

func (t *Table) Version() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Filled 已填充的slot数量以及slot总数
func (t *Table) Filled() (filled int, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filled, len(t.slots)
}

// Sections 按section_number排序的快照，未到达的slot为nil
func (t *Table) Sections() []*Section {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Section, len(t.slots))
	copy(out, t.slots)
	return out
}

// Each 按section_number遍历已到达的section
func (t *Table) Each(fn func(s *Section)) {
	for _, s := range t.Sections() {
		if s != nil {
			fn(s)
		}
	}
}

func (t *Table) Record() *record.Record {
	t.mu.Lock()
	r := record.New("table").
		Uint("table_id", uint64(t.key.TableId)).
		Str("table_name", TableName(t.key.TableId)).
		Uint("id", uint64(t.key.Id)).
		Uint("version_number", uint64(t.version)).
		Str("state", t.stateLocked().String()).
		Int("sections_filled", int64(t.filled)).
		Int("sections_total", int64(len(t.slots)))
	if t.key.TransportStreamId != 0 || t.key.OriginalNetworkId != 0 {
		r.Uint("transport_stream_id", uint64(t.key.TransportStreamId)).
			Uint("original_network_id", uint64(t.key.OriginalNetworkId))
	}
	slots := make([]*Section, len(t.slots))
	copy(slots, t.slots)
	t.mu.Unlock()

	for _, s := range slots {
		if s != nil {
			r.Child("sections", s.Record())
		}
	}
	return r
}
