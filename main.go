//go:generate protoc -I . --go_out=. --go_opt=paths=source_relative ./protocol/strand.proto
package main

import "github.com/encodeous/strand/cmd"

func main() {
	cmd.Execute()
}
