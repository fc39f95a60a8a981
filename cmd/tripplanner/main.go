package main

import "github.com/example/trip-planner/cmd"

func main() {
	cmd.Execute()
}
