package main

import "github.com/Tiliavir/workday-tracker/cmd"

func main() {
	cmd.Execute()
}
