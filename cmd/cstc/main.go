// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command cstc inspects, round-trips and patches CSTC data blocks that have
// been extracted to a directory as APPBLOCK.bin, LEVELBLOCK.bin,
// EVENTBLOCK.bin and IMAGEBLOCK.bin.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	cstc "github.com/suprsokr/go-cstc"
)

const usage = `usage: cstc <command> [arguments]

commands:
  roundtrip <dir>                     decode and re-encode every block, compare bytes
  dump [-plugins f] <dir> <block>     print a block as YAML
  diff <old> <new> <patch>            write a patch turning old into new
  apply <in> <out> <patch>...         apply patches in order
  info <patch>...                     describe patches
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("cstc: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "roundtrip":
		err = runRoundtrip(args)
	case "dump":
		err = runDump(args)
	case "diff":
		err = runDiff(args)
	case "apply":
		err = runApply(args)
	case "info":
		err = runInfo(args)
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runRoundtrip(args []string) error {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("roundtrip: expected a directory")
	}

	store := cstc.NewDirStore(fs.Arg(0))
	project, err := cstc.LoadProject(store)
	if err != nil {
		return err
	}

	failed := 0
	for _, b := range project.Blocks() {
		orig, err := store.ReadBlock(b.Kind())
		if err != nil {
			return err
		}
		out, err := b.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode %v: %w", b.Kind(), err)
		}
		if !bytes.Equal(orig, out) {
			failed++
			log.Printf("%v: MISMATCH (%d bytes in, %d bytes out, first difference at 0x%X)",
				b.Kind(), len(orig), len(out), firstDifference(orig, out))
			continue
		}
		log.Printf("%v: ok (%d bytes)", b.Kind(), len(orig))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d blocks did not round-trip", failed, len(project.Blocks()))
	}
	return nil
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	pluginsPath := fs.String("plugins", "", "YAML plugin table used to decode instance data")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("dump: expected a directory and a block name")
	}

	kind, err := cstc.ParseBlockKind(fs.Arg(1))
	if err != nil {
		return err
	}
	data, err := cstc.NewDirStore(fs.Arg(0)).ReadBlock(kind)
	if err != nil {
		return err
	}

	var v any
	switch kind {
	case cstc.AppBlockKind:
		v, err = cstc.DecodeAppBlock(data)
	case cstc.LevelBlockKind:
		var level *cstc.LevelBlock
		level, err = cstc.DecodeLevelBlock(data)
		if err == nil && *pluginsPath != "" {
			v, err = levelWithInstanceData(level, *pluginsPath)
		} else {
			v = level
		}
	case cstc.EventBlockKind:
		v, err = cstc.DecodeEventBlock(data)
	case cstc.ImageBlockKind:
		v, err = cstc.DecodeImageBlock(data)
	}
	if err != nil {
		return err
	}

	out, err := cstc.DumpYAML(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

type levelDump struct {
	Level     *cstc.LevelBlock `yaml:"level"`
	Instances []instanceDump   `yaml:"instances"`
}

type instanceDump struct {
	Layout   string          `yaml:"layout"`
	Layer    string          `yaml:"layer"`
	Instance int32           `yaml:"instance"`
	Data     cstc.ObjectData `yaml:"data"`
}

func levelWithInstanceData(level *cstc.LevelBlock, pluginsPath string) (*levelDump, error) {
	plugins, err := cstc.LoadPluginTable(pluginsPath)
	if err != nil {
		return nil, err
	}

	var instances []instanceDump
	level.Instances(func(layout *cstc.Layout, layer *cstc.LayoutLayer, inst *cstc.ObjectInstance) bool {
		var d cstc.ObjectData
		d, err = level.DecodeInstanceData(inst, plugins)
		if err != nil {
			return false
		}
		instances = append(instances, instanceDump{
			Layout:   layout.Name,
			Layer:    layer.Name,
			Instance: inst.ID,
			Data:     d,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return &levelDump{Level: level, Instances: instances}, nil
}

func runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("diff: expected old, new and patch paths")
	}

	oldBuf, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	newBuf, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return err
	}
	patch, err := cstc.Diff(oldBuf, newBuf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(2), patch, 0644); err != nil {
		return err
	}

	info, err := cstc.ReadPatchInfo(patch)
	if err != nil {
		return err
	}
	log.Printf("wrote %s: %v, %d bytes", fs.Arg(2), info.Method, len(patch))
	return nil
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	resume := fs.Bool("resume", false, "skip patches already applied to the input")
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("apply: expected input, output and at least one patch")
	}

	in, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	chain, err := cstc.OpenPatchChain(fs.Args()[2:])
	if err != nil {
		return err
	}

	var out []byte
	if *resume {
		out, err = chain.Resume(in)
	} else {
		out, err = chain.Apply(in)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(1), out, 0644); err != nil {
		return err
	}
	log.Printf("applied %d patches, wrote %s (%d bytes)", chain.Len(), fs.Arg(1), len(out))
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("info: expected at least one patch")
	}

	for _, path := range fs.Args() {
		patch, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := cstc.ReadPatchInfo(patch)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s:\n", path)
		fmt.Printf("  method:      %v\n", info.Method)
		fmt.Printf("  base:        %d bytes, blake2b %x\n", info.BaseSize, info.BaseSum)
		fmt.Printf("  target:      %d bytes, blake2b %x\n", info.TargetSize, info.TargetSum)
		fmt.Printf("  payload:     %d bytes (%d compressed)\n", info.PayloadSize, info.CompressedSize)
	}
	return nil
}
