package main

import "github.com/drhitchen/security-review-tools/cmd"

func main() {
	cmd.Execute()
}
