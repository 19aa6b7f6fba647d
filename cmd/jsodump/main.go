// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command jsodump dumps the decoded value tree of a JVM object-serialization
// stream, grounded on the teacher module's cmd/pedumper.go cobra wrapper.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/javaserial/jso"
	"github.com/spf13/cobra"
)

var (
	useSpew bool
	levels  bool
)

func prettyJSON(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %s>", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "  "); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func dumpFile(filename string) {
	log.Printf("decoding %s", filename)

	v, err := jso.ParseFile(filename, &jso.Options{})
	if err != nil {
		log.Printf("error decoding %s: %s", filename, err)
		return
	}

	if levels {
		if useSpew {
			spew.Dump(v)
		} else {
			fmt.Println(prettyJSON(v))
		}
		return
	}

	flat := v.Flatten()
	if useSpew {
		spew.Dump(flat)
		return
	}
	fmt.Println(prettyJSON(flat))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsodump",
		Short: "A JVM object-serialization stream decoder",
		Long:  "jsodump decodes byte streams written by Java's ObjectOutputStream into a language-neutral value tree",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("jsodump version 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [files...]",
		Short: "Decode one or more serialization streams",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range args {
				dumpFile(f)
			}
		},
	}
	dumpCmd.Flags().BoolVar(&useSpew, "spew", false, "print with go-spew instead of JSON")
	dumpCmd.Flags().BoolVar(&levels, "levels", false, "print the structured per-class form instead of the flattened one")

	rootCmd.AddCommand(versionCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
