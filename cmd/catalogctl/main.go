// Command catalogctl manages the catalog database: migrations, admin
// accounts and demo data.
package main

import "github.com/iliyamo/game-catalog/cmd/catalogctl/commands"

func main() {
	commands.Execute()
}
