package main

import "github.com/simaogato/hearthledger-backend/cmd/hearthctl/commands"

func main() {
	commands.Execute()
}
