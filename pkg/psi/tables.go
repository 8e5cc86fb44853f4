// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"sort"
	"sync"

	"github.com/q191201771/dvbinspect/pkg/record"
)

// Tables 所有表的汇总，Key -> Table
//
// 外层map由RWMutex保护，每个Table有自己的锁，不同Key的Update可以并发执行
type Tables struct {
	mu     sync.RWMutex
	tables map[Key]*Table

	timeMu sync.Mutex
	tdt    *Section
	tot    *Section
}

func NewTables() *Tables {
	return &Tables{
		tables: make(map[Key]*Table),
	}
}

// Update 把section合并进对应的Table
//
// TDT和TOT只有一个section，没有版本号，保留最新的
func (ts *Tables) Update(s *Section) (Outcome, error) {
	switch s.TableId {
	case TableIdTdt:
		return ts.updateTime(&ts.tdt, s), nil
	case TableIdTot:
		return ts.updateTime(&ts.tot, s), nil
	}
	return ts.obtain(s.Key()).Update(s)
}

func (ts *Tables) updateTime(slot **Section, s *Section) Outcome {
	ts.timeMu.Lock()
	defer ts.timeMu.Unlock()
	if *slot != nil && (*slot).Same(s) {
		return OutcomeDuplicate
	}
	*slot = s
	return OutcomeComplete
}

func (ts *Tables) obtain(key Key) *Table {
	ts.mu.RLock()
	t, ok := ts.tables[key]
	ts.mu.RUnlock()
	if ok {
		return t
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok = ts.tables[key]; ok {
		return t
	}
	t = NewTable(key)
	ts.tables[key] = t
	return t
}

// Table 不存在时返回nil
func (ts *Tables) Table(key Key) *Table {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.tables[key]
}

// All 按Key排序
func (ts *Tables) All() []*Table {
	ts.mu.RLock()
	out := make([]*Table, 0, len(ts.tables))
	for _, t := range ts.tables {
		out = append(out, t)
	}
	ts.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return keyLess(out[i].key, out[j].key)
	})
	return out
}

// ByTableId 指定table_id的所有Table，按Key排序
func (ts *Tables) ByTableId(tableId uint8) []*Table {
	var out []*Table
	for _, t := range ts.All() {
		if t.key.TableId == tableId {
			out = append(out, t)
		}
	}
	return out
}

func (ts *Tables) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.tables)
}

func (ts *Tables) Tdt() *Tdt {
	ts.timeMu.Lock()
	defer ts.timeMu.Unlock()
	if ts.tdt == nil {
		return nil
	}
	return ts.tdt.Body.(*Tdt)
}

func (ts *Tables) Tot() *Tot {
	ts.timeMu.Lock()
	defer ts.timeMu.Unlock()
	if ts.tot == nil {
		return nil
	}
	return ts.tot.Body.(*Tot)
}

func (ts *Tables) Records() []*record.Record {
	var out []*record.Record
	for _, t := range ts.All() {
		out = append(out, t.Record())
	}
	ts.timeMu.Lock()
	tdt, tot := ts.tdt, ts.tot
	ts.timeMu.Unlock()
	if tdt != nil {
		out = append(out, tdt.Record())
	}
	if tot != nil {
		out = append(out, tot.Record())
	}
	return out
}

func keyLess(a, b Key) bool {
	if a.TableId != b.TableId {
		return a.TableId < b.TableId
	}
	if a.Id != b.Id {
		return a.Id < b.Id
	}
	if a.OriginalNetworkId != b.OriginalNetworkId {
		return a.OriginalNetworkId < b.OriginalNetworkId
	}
	return a.TransportStreamId < b.TransportStreamId
}
