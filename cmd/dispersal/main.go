// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Dispersal is a tool for the analysis of the dispersal
// of invasive species.
package main

import (
	"github.com/dispersal-lab/dispersal/cmd/dispersal/fencecmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/groupcmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/pathcmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/prj"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/ratecmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/runcmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/sensitivitycmd"
	"github.com/dispersal-lab/dispersal/cmd/dispersal/thincmd"
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: "dispersal <command> [<argument>...]",
	Short: "a tool for the analysis of invasive species dispersal",
}

func init() {
	app.Add(runcmd.Command)
	app.Add(thincmd.Command)
	app.Add(pathcmd.Command)
	app.Add(fencecmd.Command)
	app.Add(groupcmd.Command)
	app.Add(ratecmd.Command)
	app.Add(sensitivitycmd.Command)
	app.Add(prj.Command)
}

func main() {
	app.Main()
}
