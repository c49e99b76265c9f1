/*
Copyright © 2025 delphiknight
*/
package main

import "github.com/delphiknight/mediaport/cmd"

func main() {
	cmd.Execute()
}
