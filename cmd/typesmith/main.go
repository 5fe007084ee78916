// Command typesmith edits types.xml item configuration documents.
package main

import "github.com/mesh-intelligence/typesmith/internal/cli"

func main() {
	cli.Execute()
}
