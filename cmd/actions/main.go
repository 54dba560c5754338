// Command actions prints the registered game actions and their parameters.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/gameaction"
)

func main() {
	var (
		only   = flag.String("type", "", "show a single action type")
		asJSON = flag.Bool("json", false, "print JSON instead of a table")
	)
	flag.Parse()

	reg, err := actions.NewRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, "registry:", err)
		os.Exit(1)
	}
	infos, err := describeAll(reg, gameaction.Type(*only))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(infos)
		return
	}
	fmt.Println(render(infos))
}
