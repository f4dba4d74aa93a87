// Command ggufinfo loads a GGUF container and prints its header, metadata,
// and tensor table, or diffs two containers when given two paths.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"

	"github.com/rvnllm/gguf/gguf"
	"github.com/rvnllm/gguf/ggufdiff"
)

func setUpLogger() {
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetReportCaller(true)
	logrus.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"component"},
		TimestampFormat: "2006-01-02 15:04:05.000",
		ShowFullLevel:   true,
		CallerFirst:     true,
		CustomCallerFormatter: func(frame *runtime.Frame) string {
			return fmt.Sprintf(" [%s:%d]", filepath.Base(frame.File), frame.Line)
		},
	})
}

func main() {
	setUpLogger()

	switch len(os.Args) {
	case 2:
		runInfo(os.Args[1])
	case 3:
		runDiff(os.Args[1], os.Args[2])
	default:
		fmt.Fprintln(os.Stderr, "usage: ggufinfo <file.gguf> [other.gguf]")
		os.Exit(2)
	}
}

func runInfo(path string) {
	c, err := gguf.Load(path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load container")
	}
	defer c.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Dump()); err != nil {
		logrus.WithError(err).Fatal("failed to render dump")
	}
}

func runDiff(pathA, pathB string) {
	containers, err := gguf.LoadAll([]string{pathA, pathB})
	if err != nil {
		logrus.WithError(err).Fatal("failed to load containers")
	}
	defer func() {
		for _, c := range containers {
			c.Close()
		}
	}()

	dump := ggufdiff.ComputeDump(containers[0], containers[1])
	fmt.Println(dump.Summary())
}
