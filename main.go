package main

import "iiif-presentation/cmd"

func main() {
	cmd.Execute()
}
