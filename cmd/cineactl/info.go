package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaobingchan/TJU-cinea-os/kernel/image"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <binary>",
		Short: "Inspect a user binary image",
		Long: `The info command parses a user binary image and prints its format,
entry point, and loadable segments.

Example:
  cineactl info dsk/bin/hello
  cineactl info --json dsk/bin/hello`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

type segmentInfo struct {
	Addr uint64 `json:"addr"`
	Size int    `json:"size"`
}

type imageInfo struct {
	Format   string        `json:"format"`
	Entry    uint64        `json:"entry"`
	Segments []segmentInfo `json:"segments"`
}

func runInfo(path string) error {
	bin, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	img, err := image.Parse(bin)
	if err != nil {
		if errors.Is(err, image.ErrBadMagic) {
			return fmt.Errorf("%s: not an ELF or BIN image", path)
		}
		return err
	}

	format := "ELF"
	if len(img.Segments) == 1 && img.Segments[0].Addr == 0 && img.Entry == 0 &&
		len(bin) == len(img.Segments[0].Data) {
		format = "BIN (flat)"
	}

	info := imageInfo{Format: format, Entry: uint64(img.Entry)}
	for _, seg := range img.Segments {
		info.Segments = append(info.Segments, segmentInfo{
			Addr: uint64(seg.Addr),
			Size: len(seg.Data),
		})
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("%s:\n", path)
	printInfo("  format: %s\n", info.Format)
	printInfo("  entry:  +%#x\n", info.Entry)
	printInfo("  segments:\n")
	for _, seg := range info.Segments {
		printInfo("    +%#-10x %d bytes\n", seg.Addr, seg.Size)
	}
	return nil
}
