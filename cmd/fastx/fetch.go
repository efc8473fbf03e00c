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
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-fastx/fai"
	"github.com/ianlewis/go-fastx/gzi"
	"github.com/ianlewis/go-fastx/indexed"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "fetch a sequence or range from an indexed bgzip-compressed FASTA file",
		ArgsUsage: "PATH_OR_URL NAME",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "start",
				Usage: "0-based start position of the range to fetch",
				Value: -1,
			},
			&cli.Int64Flag{
				Name:  "end",
				Usage: "end position (exclusive) of the range to fetch",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "fai",
				Usage: "location of the .fai index (defaults to PATH_OR_URL + \".fai\")",
			},
			&cli.StringFlag{
				Name:  "gzi",
				Usage: "location of the .gzi index (defaults to PATH_OR_URL + \".gzi\")",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: expected PATH_OR_URL and NAME arguments", ErrFlagParse)
			}
			cmd := &fetch{
				path:    c.Args().Get(0),
				name:    c.Args().Get(1),
				start:   c.Int64("start"),
				end:     c.Int64("end"),
				faiPath: c.String("fai"),
				gziPath: c.String("gzi"),
				out:     c.App.Writer,
			}
			return cmd.Run()
		},
	}
}

type fetch struct {
	path    string
	name    string
	start   int64
	end     int64
	faiPath string
	gziPath string
	out     io.Writer
}

func (f *fetch) Run() error {
	r, err := f.open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFastx, err)
	}
	defer r.Close()

	if f.start >= 0 {
		// With no explicit end, fetch through the end of the sequence.
		end := uint64(math.MaxUint64)
		if f.end >= 0 {
			end = uint64(f.end)
		}
		logrus.Debugf("fetching %s:%d-%d", f.name, f.start, end)

		seq, err := r.FetchRange(f.name, uint64(f.start), end)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFastx, err)
		}
		_ = must(fmt.Fprintf(f.out, "%s\n", seq))
		return nil
	}

	logrus.Debugf("fetching %s", f.name)

	rec, err := r.Fetch(f.name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFastx, err)
	}
	_ = must(fmt.Fprintf(f.out, "%s\n", rec))
	return nil
}

func (f *fetch) open() (*indexed.Reader, error) {
	if strings.HasPrefix(f.path, "http://") || strings.HasPrefix(f.path, "https://") {
		faiURL := f.faiPath
		if faiURL == "" {
			faiURL = f.path + ".fai"
		}
		gziURL := f.gziPath
		if gziURL == "" {
			gziURL = f.path + ".gzi"
		}
		return indexed.OpenURL(f.path, faiURL, gziURL)
	}

	if f.faiPath != "" || f.gziPath != "" {
		faiPath := f.faiPath
		if faiPath == "" {
			faiPath = f.path + ".fai"
		}
		gziPath := f.gziPath
		if gziPath == "" {
			gziPath = f.path + ".gzi"
		}

		faiIdx, err := fai.Open(faiPath)
		if err != nil {
			return nil, err
		}
		gziIdx, err := gzi.Open(gziPath)
		if err != nil {
			return nil, err
		}
		df, err := os.Open(f.path)
		if err != nil {
			return nil, err
		}
		r, err := indexed.NewReader(df, faiIdx, gziIdx)
		if err != nil {
			df.Close()
			return nil, err
		}
		return r, nil
	}

	return indexed.Open(f.path)
}
