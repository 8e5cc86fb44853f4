// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/inspect"
	"github.com/q191201771/dvbinspect/pkg/tsfeed"
	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
)

var defaultConfigFiles = []string{
	"./conf/dvbinspect.conf.json",
	"../conf/dvbinspect.conf.json",
}

func main() {
	defer nazalog.Sync()

	confFile, inFile, extractPid, outFile := parseFlag()

	config := loadConfig(confFile)
	if err := nazalog.Init(func(option *nazalog.Option) {
		*option = config.Log
	}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "initial log failed. err=%+v\n", err)
		base.OsExitAndWaitPressIfWindows(1)
	}
	base.LogoutStartInfo()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fp, err := os.Open(inFile)
	if err != nil {
		nazalog.Errorf("open input failed. file=%s, err=%+v", inFile, err)
		return
	}
	defer fp.Close()

	batch, err := tsfeed.Collect(ctx, fp, func(option *tsfeed.Option) {
		option.PacketSize = config.Input.PacketSize
	})
	if err != nil {
		nazalog.Errorf("read ts failed. file=%s, err=%+v", inFile, err)
		return
	}
	nazalog.Infof("read ts done. packets=%d, sections=%d, pes=%d, crc_errors=%d, cc_errors=%d",
		batch.Stat.Packets, batch.Stat.Sections, batch.Stat.PesPackets, batch.Stat.CrcErrors, batch.Stat.CcErrors)

	insp, err := inspect.NewInspector(*config)
	if err != nil {
		nazalog.Errorf("new inspector failed. err=%+v", err)
		return
	}
	defer insp.Close()
	if err = insp.DecodeBatch(ctx, batch.Sections, batch.Pes); err != nil {
		nazalog.Errorf("decode failed. err=%+v", err)
		return
	}

	_, _ = fmt.Fprint(os.Stdout, batch.Record().Dump())
	for _, r := range insp.Records() {
		_, _ = fmt.Fprint(os.Stdout, r.Dump())
	}

	tables := insp.Tables()
	if nid, ok := tables.ActualNetworkID(); ok {
		name, _ := tables.NetworkName(nid)
		nazalog.Infof("actual network. network_id=%d, name=%s", nid, name)
	}
	nazalog.Infof("inspect done. tables=%d, diagnostics=%d", tables.Len(), insp.DiagnosticCount())

	if extractPid >= 0 && outFile != "" {
		if err = extract(batch, uint16(extractPid), outFile); err != nil {
			nazalog.Errorf("extract failed. pid=0x%04x, file=%s, err=%+v", extractPid, outFile, err)
		}
	}
}

// extract 把某个PID上的section或者PES包重新打包写入单独的TS文件
func extract(batch *tsfeed.Batch, pid uint16, filename string) error {
	var fw tsfeed.FileWriter
	if err := fw.Create(filename, pid); err != nil {
		return err
	}
	defer fw.Dispose()

	n := 0
	for _, in := range batch.Sections {
		if in.Pid == pid {
			if err := fw.WriteSection(in.Data); err != nil {
				return err
			}
			n++
		}
	}
	for _, in := range batch.Pes {
		if in.Pid == pid {
			if err := fw.WritePes(in.Data); err != nil {
				return err
			}
			n++
		}
	}
	nazalog.Infof("extract done. pid=0x%04x, units=%d, file=%s", pid, n, fw.Name())
	return nil
}

func loadConfig(confFile string) *inspect.Config {
	cf := base.ResolveConfigFile(confFile, defaultConfigFiles)
	if cf == "" {
		c := inspect.DefaultConfig()
		return &c
	}
	config, err := inspect.LoadConf(cf)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load conf file failed. file=%s err=%+v\n", cf, err)
		base.OsExitAndWaitPressIfWindows(1)
	}
	return config
}

func parseFlag() (confFile, inFile string, extractPid int, outFile string) {
	binInfoFlag := flag.Bool("v", false, "show bin info")
	cf := flag.String("c", "", "specify conf file")
	i := flag.String("i", "", "specify input ts file")
	x := flag.Int("x", -1, "specify pid to extract")
	o := flag.String("o", "", "specify output ts file of extracted pid")
	flag.Parse()
	if *binInfoFlag {
		_, _ = fmt.Fprint(os.Stderr, bininfo.StringifyMultiLine())
		_, _ = fmt.Fprintln(os.Stderr, base.FullInfo)
		os.Exit(0)
	}
	if *i == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/dvbinspect -i ./testdata/dvb.ts
  ./bin/dvbinspect -c ./conf/dvbinspect.conf.json -i ./testdata/dvb.ts
  ./bin/dvbinspect -i ./testdata/dvb.ts -x 0x101 -o ./subtitle.ts
`)
		base.OsExitAndWaitPressIfWindows(1)
	}
	return *cf, *i, *x, *o
}
