// SPDX-License-Identifier: MPL-2.0

// runcfg records the configuration of machine learning training runs.
package main

import cmd "github.com/runcfg/runcfg/cmd/runcfg"

func main() {
	cmd.Execute()
}
