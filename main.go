// SPDX-License-Identifier: MPL-2.0

package main

import cmd "cmdfn/cmd/cmdfn"

func main() {
	cmd.Execute()
}
