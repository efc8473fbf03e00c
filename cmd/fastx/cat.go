// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	fastx "github.com/ianlewis/go-fastx"
)

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "print records from FASTA or FASTQ files",
		ArgsUsage: "[PATH]...",
		Action: func(c *cli.Context) error {
			for _, path := range c.Args().Slice() {
				cmd := &cat{
					path: path,
					out:  c.App.Writer,
				}
				if err := cmd.Run(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type cat struct {
	path string
	out  io.Writer
}

func (c *cat) Run() error {
	f, err := fastx.Open(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFastx, err)
	}
	defer f.Close()

	logrus.Debugf("reading %s", c.path)

	count := 0
	err = fastx.ForEach(f.Reader,
		func(rec *fastx.FastARecord) {
			count++
			_ = must(fmt.Fprintf(c.out, "%s\n", rec))
		},
		func(rec *fastx.FastQRecord) {
			count++
			_ = must(fmt.Fprintf(c.out, "%s\n", rec))
		},
	)
	if err != nil {
		return fmt.Errorf("%w: reading %q: %w", ErrFastx, c.path, err)
	}

	logrus.Debugf("%s: %d records", c.path, count)

	return nil
}
