package main

import "github.com/ValentinKolb/tStore/cmd"

func main() {
	cmd.Execute()
}
