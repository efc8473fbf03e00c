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
	"sort"
	"strings"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-fastx/fai"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list the sequences in a FASTA index",
		ArgsUsage: "[PATH]...",
		Action: func(c *cli.Context) error {
			for _, path := range c.Args().Slice() {
				cmd := &list{path: path}
				if err := cmd.Run(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type list struct {
	path string
}

func (l *list) Run() error {
	path := l.path
	if !strings.HasSuffix(path, ".fai") {
		path += ".fai"
	}

	idx, err := fai.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFastx, err)
	}

	entries := idx.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	tbl := table.New("name", "length", "offset", "line bases", "line width")
	for _, e := range entries {
		tbl.AddRow(e.Name, e.Length, e.Offset, e.LineBases, e.LineWidth)
	}
	tbl.Print()

	return nil
}
