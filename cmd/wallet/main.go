// Package main is the panoplia command line wallet: a desktop client for an
// MPC co-signer server. It never holds key material; every signature is a
// threshold session between this client and the server.
package main

import "github.com/spf13/cobra"

func main() {
	cobra.CheckErr(newRootCommand().Execute())
}
