package main

import "github.com/smegmarip/deepfake-sentinel/cmd"

func main() {
	cmd.Execute()
}
