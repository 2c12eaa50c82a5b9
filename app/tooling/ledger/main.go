// This program provides a command line client for a ledger node.
package main

import "github.com/jazcoin/node/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
