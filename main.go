package main

import "github.com/flintmod/bumpath/cmd"

func main() {
	cmd.Execute()
}
