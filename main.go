package main

import "github.com/rolltable/rolltable/cmd"

func main() {
	cmd.Execute()
}
