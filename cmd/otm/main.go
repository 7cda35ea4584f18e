package main

import "github.com/OpenTraceLab/OpenTraceMotor/cmd/otm/cmd"

func main() {
	cmd.Execute()
}
