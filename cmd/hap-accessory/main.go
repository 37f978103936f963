// hap-accessory runs a HAP accessory that can be paired with a controller.
//
// Usage:
//
//	hap-accessory serve [--config accessory.toml] [--storage accessory.db]
//	hap-accessory show
//	hap-accessory reset
//
// Without --storage the accessory identity and pairings live in memory and
// are lost on exit.
package main

import (
	"os"

	"github.com/backkem/hap/cmd/hap-accessory/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
